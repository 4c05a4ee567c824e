package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const deletionColumns = `r.id, r.profile_id, r.confirmation_text, r.status, r.requested_at, r.reviewed_at, r.reviewed_by`

type deletionRepo struct {
	db *pgxpool.Pool
}

func NewDeletionRepository(db *pgxpool.Pool) domain.DeletionRepository {
	return &deletionRepo{db: db}
}

func scanDeletion(row pgx.Row, extra ...any) (*domain.AccountDeletionRequest, error) {
	var req domain.AccountDeletionRequest
	dest := []any{&req.ID, &req.ProfileID, &req.ConfirmationText, &req.Status, &req.RequestedAt, &req.ReviewedAt, &req.ReviewedBy}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *deletionRepo) Create(ctx context.Context, req *domain.AccountDeletionRequest) error {
	query := `
		INSERT INTO account_deletion_requests (profile_id, confirmation_text, status, requested_at)
		VALUES ($1, $2, 'PENDING', NOW())
		RETURNING id, status, requested_at`
	err := r.db.QueryRow(ctx, query, req.ProfileID, req.ConfirmationText).Scan(&req.ID, &req.Status, &req.RequestedAt)
	if database.IsUniqueViolation(err, "account_deletion_requests_one_pending") {
		return domain.ErrDuplicatePending
	}
	if err != nil {
		return fmt.Errorf("create deletion request: %w", err)
	}
	return nil
}

func (r *deletionRepo) GetByID(ctx context.Context, id string) (*domain.AccountDeletionRequest, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+deletionColumns+` FROM account_deletion_requests r WHERE r.id = $1`, id)
}

func (r *deletionRepo) GetLatestByProfile(ctx context.Context, profileID string) (*domain.AccountDeletionRequest, error) {
	return r.getOne(ctx, `SELECT `+deletionColumns+` FROM account_deletion_requests r
		WHERE r.profile_id = $1 ORDER BY r.requested_at DESC LIMIT 1`, profileID)
}

func (r *deletionRepo) getOne(ctx context.Context, query string, args ...any) (*domain.AccountDeletionRequest, error) {
	req, err := scanDeletion(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deletion request: %w", err)
	}
	return req, nil
}

func (r *deletionRepo) HasPending(ctx context.Context, profileID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM account_deletion_requests WHERE profile_id = $1 AND status = 'PENDING')`,
		profileID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending deletion: %w", err)
	}
	return exists, nil
}

func (r *deletionRepo) List(ctx context.Context, filter domain.DeletionFilter) ([]domain.AccountDeletionRequest, int64, error) {
	where := ""
	var args []any
	argIndex := 1
	if filter.Status != "" {
		where = fmt.Sprintf(" WHERE r.status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM account_deletion_requests r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deletion requests: %w", err)
	}

	query := `SELECT ` + deletionColumns + `, p.full_name, p.role
		FROM account_deletion_requests r
		LEFT JOIN profiles p ON p.id = r.profile_id` + where +
		fmt.Sprintf(" ORDER BY r.requested_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deletion requests: %w", err)
	}
	defer rows.Close()

	items := []domain.AccountDeletionRequest{}
	for rows.Next() {
		var name *string
		var role *domain.Role
		req, err := scanDeletion(rows, &name, &role)
		if err != nil {
			return nil, 0, err
		}
		req.ProfileName = name
		req.ProfileRole = role
		items = append(items, *req)
	}
	return items, total, rows.Err()
}

// Approve closes the request and soft-deletes the owner atomically
func (r *deletionRepo) Approve(ctx context.Context, id, reviewerID string, at time.Time) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		profileID, err := resolvePending(ctx, tx, id, domain.DeletionApproved, reviewerID, at)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE profiles SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
			profileID, at)
		if err != nil {
			return fmt.Errorf("soft delete profile: %w", err)
		}
		return nil
	})
}

func (r *deletionRepo) Reject(ctx context.Context, id, reviewerID string, at time.Time) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := resolvePending(ctx, tx, id, domain.DeletionRejected, reviewerID, at)
		return err
	})
}

func resolvePending(ctx context.Context, tx pgx.Tx, id string, status domain.DeletionRequestStatus, reviewerID string, at time.Time) (string, error) {
	var profileID string
	err := tx.QueryRow(ctx, `
		UPDATE account_deletion_requests SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'PENDING'
		RETURNING profile_id`, id, status, reviewerID, at).Scan(&profileID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrStaleState
	}
	if err != nil {
		return "", fmt.Errorf("resolve deletion request: %w", err)
	}
	return profileID, nil
}
