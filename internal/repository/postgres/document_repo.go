package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `d.id, d.profile_id, d.document_type, d.file_name, d.file_path, d.mime_type, d.status,
	d.reviewed_by, d.reviewed_at, d.review_notes, d.created_at, d.updated_at`

// editableStatuses are the application states in which documents may change
var editableStatuses = func() []string {
	var out []string
	for _, s := range domain.ValidApplicationStatuses {
		if domain.CanUploadDocument(s) {
			out = append(out, string(s))
		}
	}
	return out
}()

// applicationEditable guards writes against a concurrent status change of the owner
const applicationEditable = `EXISTS (
	SELECT 1 FROM profiles p
	WHERE p.id = %s AND p.deleted_at IS NULL
	  AND COALESCE(p.application_status, 'NEW_APPLICATION') = ANY(%s)
)`

type documentRepo struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) domain.DocumentRepository {
	return &documentRepo{db: db}
}

func scanDocument(row pgx.Row, extra ...any) (*domain.Document, error) {
	var d domain.Document
	dest := []any{
		&d.ID, &d.ProfileID, &d.DocumentType, &d.FileName, &d.FilePath, &d.MimeType, &d.Status,
		&d.ReviewedBy, &d.ReviewedAt, &d.ReviewNotes, &d.CreatedAt, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) ListByProfile(ctx context.Context, profileID string) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.profile_id = $1 ORDER BY d.document_type`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.id = $1`, id)
}

func (r *documentRepo) GetByProfileAndType(ctx context.Context, profileID string, docType domain.DocumentType) (*domain.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.profile_id = $1 AND d.document_type = $2`, profileID, docType)
}

func (r *documentRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// Create inserts a PENDING document. It fails with ErrStaleState when the
// owner's application no longer accepts uploads or a document of the same
// type was created concurrently.
func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (profile_id, document_type, file_name, file_path, mime_type, status, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, 'PENDING', NOW(), NOW()
		WHERE ` + fmt.Sprintf(applicationEditable, "$1", "$6") + `
		RETURNING id, status, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		doc.ProfileID, doc.DocumentType, doc.FileName, doc.FilePath, doc.MimeType, editableStatuses,
	).Scan(&doc.ID, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || database.IsUniqueViolation(err, "documents_profile_type_key") {
		return domain.ErrStaleState
	}
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *documentRepo) Replace(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents d SET
			file_name = $2, file_path = $3, mime_type = $4, status = 'PENDING',
			reviewed_by = NULL, reviewed_at = NULL, review_notes = NULL, updated_at = NOW()
		WHERE d.id = $1 AND ` + fmt.Sprintf(applicationEditable, "d.profile_id", "$5") + `
		RETURNING ` + documentColumns

	updated, err := scanDocument(r.db.QueryRow(ctx, query, doc.ID, doc.FileName, doc.FilePath, doc.MimeType, editableStatuses))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrStaleState
	}
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	*doc = *updated
	return nil
}

func (r *documentRepo) Review(ctx context.Context, id string, status domain.DocumentStatus, reviewerID string, notes *string) (*domain.Document, error) {
	query := `
		UPDATE documents d SET status = $2, reviewed_by = $3, reviewed_at = NOW(), review_notes = $4, updated_at = NOW()
		WHERE d.id = $1 AND d.status = 'PENDING'
		RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRow(ctx, query, id, status, reviewerID, notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStaleState
	}
	if err != nil {
		return nil, fmt.Errorf("review document: %w", err)
	}
	return d, nil
}

// ListPending is the reviewer queue, oldest first
func (r *documentRepo) ListPending(ctx context.Context, page, limit int) ([]domain.Document, int64, error) {
	const from = ` FROM documents d JOIN profiles p ON p.id = d.profile_id
		WHERE d.status = 'PENDING' AND p.deleted_at IS NULL`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending documents: %w", err)
	}

	query := `SELECT ` + documentColumns + `, p.full_name` + from + ` ORDER BY d.created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var name string
		d, err := scanDocument(rows, &name)
		if err != nil {
			return nil, 0, err
		}
		d.CandidateName = &name
		docs = append(docs, *d)
	}
	return docs, total, rows.Err()
}
