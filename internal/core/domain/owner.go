package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OwnerKind is the kind of business entity a document is attached to
type OwnerKind string

const (
	OwnerKindRegistryEntry OwnerKind = "registry_entry"
	OwnerKindGara          OwnerKind = "gara"
	OwnerKindLotto         OwnerKind = "lotto"
	OwnerKindPreventivo    OwnerKind = "preventivo"
	OwnerKindIntegrazione  OwnerKind = "integrazione"
)

// tenderDepth is the position of a kind in the tender hierarchy
var tenderDepth = map[OwnerKind]int{
	OwnerKindGara:         1,
	OwnerKindLotto:        2,
	OwnerKindPreventivo:   3,
	OwnerKindIntegrazione: 4,
}

// OwnerKinds lists every known kind, tender hierarchy from root to leaf
var OwnerKinds = []OwnerKind{
	OwnerKindRegistryEntry,
	OwnerKindGara,
	OwnerKindLotto,
	OwnerKindPreventivo,
	OwnerKindIntegrazione,
}

// ParseOwnerKind parses a kind name
func ParseOwnerKind(s string) (OwnerKind, error) {
	kind := OwnerKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown owner kind %q", ErrInvalidOwner, s)
	}
	return kind, nil
}

// Valid reports whether k is a known kind
func (k OwnerKind) Valid() bool {
	if k == OwnerKindRegistryEntry {
		return true
	}
	_, ok := tenderDepth[k]
	return ok
}

// OwnerRef references one business entity
type OwnerRef struct {
	Kind OwnerKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.ID)
}

// OwnerChain is the ordered list of owners of a document, root first.
// The last element is the immediate owner; ancestors may be omitted.
type OwnerChain []OwnerRef

// Owner returns the immediate (deepest) owner
func (c OwnerChain) Owner() OwnerRef {
	if len(c) == 0 {
		return OwnerRef{}
	}
	return c[len(c)-1]
}

// Validate checks the chain is non-empty and descends the hierarchy
func (c OwnerChain) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: owner chain is empty", ErrInvalidOwner)
	}

	prevDepth := 0
	for _, ref := range c {
		if !ref.Kind.Valid() {
			return fmt.Errorf("%w: unknown owner kind %q", ErrInvalidOwner, ref.Kind)
		}
		if ref.ID == uuid.Nil {
			return fmt.Errorf("%w: %s id is empty", ErrInvalidOwner, ref.Kind)
		}
		if ref.Kind == OwnerKindRegistryEntry {
			if len(c) != 1 {
				return fmt.Errorf("%w: registry entry cannot be combined with other owners", ErrInvalidOwner)
			}
			continue
		}
		depth := tenderDepth[ref.Kind]
		if depth <= prevDepth {
			return fmt.Errorf("%w: %s cannot follow a deeper owner", ErrInvalidOwner, ref.Kind)
		}
		prevDepth = depth
	}
	return nil
}
