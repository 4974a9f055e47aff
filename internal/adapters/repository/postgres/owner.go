package postgres

import (
	"context"
	"fmt"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
)

// ownerTables maps each owner kind to the table holding its entities
var ownerTables = map[domain.OwnerKind]string{
	domain.OwnerKindRegistryEntry: "registry_entries",
	domain.OwnerKindGara:          "gare",
	domain.OwnerKindLotto:         "lotti",
	domain.OwnerKindPreventivo:    "preventivi",
	domain.OwnerKindIntegrazione:  "integrazioni",
}

type sqlOwnerRepository struct {
	db SQLQuerier
}

// NewSqlOwnerRepository creates sqlOwnerRepository that implements port.OwnerRepository
func NewSqlOwnerRepository(db SQLQuerier) port.OwnerRepository {
	return &sqlOwnerRepository{
		db: db,
	}
}

// Exists reports whether the referenced entity exists
func (s *sqlOwnerRepository) Exists(ctx context.Context, owner domain.OwnerRef) (bool, error) {
	table, ok := ownerTables[owner.Kind]
	if !ok {
		return false, fmt.Errorf("%w: unknown owner kind %q", domain.ErrInvalidOwner, owner.Kind)
	}

	// table comes from the fixed map above
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, owner.ID); err != nil {
		return false, err
	}
	return exists, nil
}
