package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Transition serializes decisions on one candidate with a row lock. The
// document set handed to decide is read under the same lock.
func (r *applicationRepo) Transition(ctx context.Context, candidateID, actorID string, action domain.ApplicationAction, reason *string, decide domain.TransitionFunc) (*domain.Decision, error) {
	if !isUUID(candidateID) {
		return nil, domain.ErrNotFound
	}
	var decision *domain.Decision

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		candidate, err := scanProfile(tx.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, candidateID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock candidate: %w", err)
		}

		docs, err := listDocuments(ctx, tx, candidateID)
		if err != nil {
			return err
		}

		next, err := decide(candidate, docs)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET application_status = $2, updated_at = NOW() WHERE id = $1`,
			candidateID, next); err != nil {
			return fmt.Errorf("update application status: %w", err)
		}

		d := &domain.Decision{
			ProfileID:  candidateID,
			ActorID:    actorID,
			Action:     action,
			FromStatus: candidate.Status(),
			ToStatus:   next,
			Reason:     reason,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO application_decisions (profile_id, actor_id, action, from_status, to_status, reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id, created_at`,
			d.ProfileID, d.ActorID, d.Action, d.FromStatus, d.ToStatus, d.Reason,
		).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return fmt.Errorf("record decision: %w", err)
		}
		decision = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func listDocuments(ctx context.Context, tx pgx.Tx, profileID string) ([]domain.Document, error) {
	rows, err := tx.Query(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.profile_id = $1`, profileID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// List returns the pipeline view. A non-positive Limit returns every match.
func (r *applicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.ApplicationSummary, int64, error) {
	conditions := []string{"p.role = 'CANDIDATE'", "p.deleted_at IS NULL"}
	var args []any
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("COALESCE(p.application_status, 'NEW_APPLICATION') = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.MiddlemanID != "" {
		conditions = append(conditions, fmt.Sprintf("p.middleman_id = $%d", argIndex))
		args = append(args, filter.MiddlemanID)
		argIndex++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conditions = append(conditions, fmt.Sprintf("p.full_name ILIKE $%d", argIndex))
		args = append(args, "%"+s+"%")
		argIndex++
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := `
		SELECT p.id, p.full_name, p.middleman_id, m.full_name,
		       COALESCE(p.application_status, 'NEW_APPLICATION'),
		       ci.email, ci.phone,
		       dc.total, dc.pending, dc.approved, dc.rejected,
		       p.created_at, p.updated_at
		FROM profiles p
		LEFT JOIN profiles m ON m.id = p.middleman_id
		LEFT JOIN candidate_info ci ON ci.profile_id = p.id
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
			       COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved,
			       COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected
			FROM documents WHERE profile_id = p.id
		) dc ON TRUE` + where + ` ORDER BY p.updated_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	items := []domain.ApplicationSummary{}
	for rows.Next() {
		var s domain.ApplicationSummary
		err := rows.Scan(
			&s.ProfileID, &s.FullName, &s.MiddlemanID, &s.MiddlemanName,
			&s.ApplicationStatus, &s.Email, &s.Phone,
			&s.Documents.Total, &s.Documents.Pending, &s.Documents.Approved, &s.Documents.Rejected,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *applicationRepo) History(ctx context.Context, candidateID string) ([]domain.Decision, error) {
	if !isUUID(candidateID) {
		return []domain.Decision{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, profile_id, actor_id, action, from_status, to_status, reason, created_at
		FROM application_decisions WHERE profile_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	history := []domain.Decision{}
	for rows.Next() {
		var d domain.Decision
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.ActorID, &d.Action, &d.FromStatus, &d.ToStatus, &d.Reason, &d.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, d)
	}
	return history, rows.Err()
}

// CountByStatus counts live candidates per status, optionally scoped to a middleman
func (r *applicationRepo) CountByStatus(ctx context.Context, middlemanID string) (domain.StatusCounts, error) {
	query := `
		SELECT COALESCE(application_status, 'NEW_APPLICATION'), COUNT(*)
		FROM profiles
		WHERE role = 'CANDIDATE' AND deleted_at IS NULL AND ($1 = '' OR middleman_id::text = $1)
		GROUP BY 1`
	rows, err := r.db.Query(ctx, query, middlemanID)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()

	counts := make(domain.StatusCounts, len(domain.ValidApplicationStatuses))
	for _, s := range domain.ValidApplicationStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status domain.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
