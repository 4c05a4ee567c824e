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

const profileColumns = `id, full_name, role, middleman_id, application_status, deleted_at, created_at, updated_at`

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.FullName, &p.Role, &p.MiddlemanID, &p.ApplicationStatus, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns soft-deleted profiles too; nil, nil when absent
func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, role, middleman_id, application_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			middleman_id = EXCLUDED.middleman_id,
			application_status = EXCLUDED.application_status,
			deleted_at = NULL,
			updated_at = NOW()
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, p.ID, p.FullName, p.Role, p.MiddlemanID, p.ApplicationStatus).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	p.DeletedAt = nil
	return nil
}

// Delete hard-deletes a profile. Used only to undo a failed provisioning.
func (r *profileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (r *profileRepo) UpdateFullName(ctx context.Context, id, fullName string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET full_name = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, fullName)
	if err != nil {
		return fmt.Errorf("update full name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateRole changes the role under a row lock. Only candidates carry a
// middleman link, and a middleman with active candidates cannot be demoted.
func (r *profileRepo) UpdateRole(ctx context.Context, id string, role domain.Role, status *domain.ApplicationStatus) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var current domain.Role
		err := tx.QueryRow(ctx,
			`SELECT role FROM profiles WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}

		if current == domain.RoleMiddleman && role != domain.RoleMiddleman {
			var linked int
			if err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM profiles WHERE middleman_id = $1 AND deleted_at IS NULL`, id).Scan(&linked); err != nil {
				return fmt.Errorf("count linked candidates: %w", err)
			}
			if err := domain.ValidateRoleChange(current, role, linked); err != nil {
				return err
			}
			// Closed candidate accounts still reference the old middleman
			if _, err := tx.Exec(ctx, `UPDATE profiles SET middleman_id = NULL WHERE middleman_id = $1`, id); err != nil {
				return fmt.Errorf("unlink closed candidates: %w", err)
			}
		}

		query := `
			UPDATE profiles SET role = $2, application_status = $3,
				middleman_id = CASE WHEN $2::text = 'CANDIDATE' THEN middleman_id ELSE NULL END,
				updated_at = NOW()
			WHERE id = $1`
		if _, err := tx.Exec(ctx, query, id, role, status); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	})
}

func (r *profileRepo) SetMiddleman(ctx context.Context, id string, middlemanID *string) error {
	query := `UPDATE profiles SET middleman_id = $2, updated_at = NOW() WHERE id = $1 AND role = 'CANDIDATE' AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id, middlemanID)
	if err != nil {
		return fmt.Errorf("set middleman: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List pages through profiles. A non-positive Limit returns every match.
func (r *profileRepo) List(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, int64, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, filter.Role)
		argIndex++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", argIndex))
		args = append(args, "%"+s+"%")
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	}

	profiles, err := r.queryProfiles(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepo) ListByMiddleman(ctx context.Context, middlemanID string) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE middleman_id = $1 AND role = 'CANDIDATE' AND deleted_at IS NULL
		ORDER BY created_at DESC`
	return r.queryProfiles(ctx, query, middlemanID)
}

func (r *profileRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM profiles WHERE deleted_at IS NULL GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Role]int64, len(domain.ValidRoles))
	for _, role := range domain.ValidRoles {
		counts[role] = 0
	}
	for rows.Next() {
		var role domain.Role
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

func (r *profileRepo) queryProfiles(ctx context.Context, query string, args ...any) ([]domain.Profile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
