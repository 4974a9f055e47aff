package document

import (
	"path"
	"strings"
	"tender-docs/internal/core/domain"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSanitizedNameLength = 128

// ObjectKey returns the storage key of a document:
// the owner chain as path segments, then "{id}-{sanitized file name}".
// The key is deterministic and unique per document id.
func ObjectKey(owners domain.OwnerChain, id uuid.UUID, fileName string) string {
	var b strings.Builder
	for _, owner := range owners {
		b.WriteString(string(owner.Kind))
		b.WriteByte('/')
		b.WriteString(owner.ID.String())
		b.WriteByte('/')
	}
	b.WriteString(id.String())
	b.WriteByte('-')
	b.WriteString(sanitizeFileName(fileName))
	return b.String()
}

// sanitizeFileName keeps [A-Za-z0-9._-], folding accented letters to ASCII
func sanitizeFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range folded {
		ok := r < unicode.MaxASCII && (r == '.' || r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	sanitized := strings.TrimLeft(b.String(), ".")
	if len(sanitized) > maxSanitizedNameLength {
		ext := path.Ext(sanitized)
		if len(ext) > 16 {
			ext = ""
		}
		sanitized = sanitized[:maxSanitizedNameLength-len(ext)] + ext
	}
	if strings.Trim(sanitized, "_") == "" {
		return "file"
	}
	return sanitized
}
