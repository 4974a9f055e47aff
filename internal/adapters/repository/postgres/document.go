package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation          = "23505"
	objectKeyConstraint      = "documents_object_key_key"
	ownerFileNameUniqueIndex = "documents_owner_file_name_key"
	documentColumns          = `id, owner_kind, owner_id, owner_chain, file_name, object_key, size_bytes, content_type, upload_complete, uploaded_by, uploaded_at, is_deleted, deleted_at, deleted_by`
)

type sqlDocumentRepository struct {
	db SQLQuerier
}

// NewSqlDocumentRepository creates sqlDocumentRepository that implements port.DocumentRepository
func NewSqlDocumentRepository(db SQLQuerier) port.DocumentRepository {
	return &sqlDocumentRepository{
		db: db,
	}
}

// Create inserts a document record
func (s *sqlDocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	chain, err := json.Marshal(doc.Owners)
	if err != nil {
		return fmt.Errorf("error encoding owner chain: %w", err)
	}
	owner := doc.Owner()

	query := `INSERT INTO documents (id, owner_kind, owner_id, owner_chain, file_name, object_key, size_bytes, content_type, upload_complete, uploaded_by, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		string(owner.Kind),
		owner.ID,
		chain,
		doc.FileName,
		doc.ObjectKey,
		doc.SizeBytes,
		doc.ContentType,
		doc.UploadComplete,
		doc.UploadedBy,
		doc.UploadedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == ownerFileNameUniqueIndex {
				return fmt.Errorf("document %s : %w", doc.FileName, domain.ErrDuplicateName)
			}
			return fmt.Errorf("document %s : %w", doc.ID, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// MarkUploadComplete flips the completion flag, idempotently
func (s *sqlDocumentRepository) MarkUploadComplete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE documents SET upload_complete = TRUE WHERE id = $1 AND NOT is_deleted`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// SoftDelete tombstones a completed document
func (s *sqlDocumentRepository) SoftDelete(ctx context.Context, id uuid.UUID, tombstone domain.Tombstone) error {
	query := `UPDATE documents SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3
	          WHERE id = $1 AND upload_complete AND NOT is_deleted`

	result, err := s.db.ExecContext(ctx, query, id, tombstone.At, tombstone.By)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// HardDelete removes an incomplete document record. Completed records are never hard deleted.
func (s *sqlDocumentRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1 AND NOT upload_complete`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// FindByID returns a non deleted document
func (s *sqlDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND NOT is_deleted`

	return s.getOne(ctx, query, id)
}

// FindByOwnerAndFileName returns the live document with this name, pending or complete
func (s *sqlDocumentRepository) FindByOwnerAndFileName(ctx context.Context, owner domain.OwnerRef, fileName string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
	          WHERE owner_kind = $1 AND owner_id = $2 AND file_name = $3 AND NOT is_deleted
	          LIMIT 1`

	return s.getOne(ctx, query, string(owner.Kind), owner.ID, fileName)
}

// FindByOwner returns the non deleted documents of an owner, oldest first
func (s *sqlDocumentRepository) FindByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
	          WHERE owner_kind = $1 AND owner_id = $2 AND NOT is_deleted
	          ORDER BY uploaded_at, id`

	return s.getMany(ctx, query, string(owner.Kind), owner.ID)
}

// FindIncompleteOlderThan returns incomplete documents uploaded before cutoff, oldest first
func (s *sqlDocumentRepository) FindIncompleteOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
	          WHERE NOT upload_complete AND uploaded_at < $1
	          ORDER BY uploaded_at
	          LIMIT $2`

	return s.getMany(ctx, query, cutoff, limit)
}

// ClaimIncomplete locks an incomplete document still older than cutoff.
// It returns nil without error when the document completed, vanished or is
// locked by another transaction. Must run inside a unit of work.
func (s *sqlDocumentRepository) ClaimIncomplete(ctx context.Context, id uuid.UUID, cutoff time.Time) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
	          WHERE id = $1 AND NOT upload_complete AND uploaded_at < $2
	          FOR UPDATE SKIP LOCKED`

	doc, err := s.getOne(ctx, query, id, cutoff)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, nil
	}
	return doc, err
}

func (s *sqlDocumentRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Document, error) {
	var row dbDocument
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

func (s *sqlDocumentRepository) getMany(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	var rows []dbDocument
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func expectRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// dbDocument represents a document row
type dbDocument struct {
	ID             uuid.UUID     `db:"id"`
	OwnerKind      string        `db:"owner_kind"`
	OwnerID        uuid.UUID     `db:"owner_id"`
	OwnerChain     []byte        `db:"owner_chain"`
	FileName       string        `db:"file_name"`
	ObjectKey      string        `db:"object_key"`
	SizeBytes      int64         `db:"size_bytes"`
	ContentType    string        `db:"content_type"`
	UploadComplete bool          `db:"upload_complete"`
	UploadedBy     uuid.UUID     `db:"uploaded_by"`
	UploadedAt     time.Time     `db:"uploaded_at"`
	IsDeleted      bool          `db:"is_deleted"`
	DeletedAt      sql.NullTime  `db:"deleted_at"`
	DeletedBy      uuid.NullUUID `db:"deleted_by"`
}

// ToDomain converts to domain.Document
func (d *dbDocument) ToDomain() (*domain.Document, error) {
	var owners domain.OwnerChain
	if err := json.Unmarshal(d.OwnerChain, &owners); err != nil {
		return nil, fmt.Errorf("error decoding owner chain of document %s: %w", d.ID, err)
	}

	doc := &domain.Document{
		ID:             d.ID,
		Owners:         owners,
		FileName:       d.FileName,
		ObjectKey:      d.ObjectKey,
		SizeBytes:      d.SizeBytes,
		ContentType:    d.ContentType,
		UploadComplete: d.UploadComplete,
		UploadedBy:     d.UploadedBy,
		UploadedAt:     d.UploadedAt.UTC(),
	}
	if d.IsDeleted {
		doc.Deletion = &domain.Tombstone{At: d.DeletedAt.Time.UTC(), By: d.DeletedBy.UUID}
	}
	return doc, nil
}
