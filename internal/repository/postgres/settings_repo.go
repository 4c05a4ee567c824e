package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-recruitment-workflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, key domain.SettingKey) (*domain.Setting, error) {
	var s domain.Setting
	err := r.db.QueryRow(ctx, `SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &s, nil
}

func (r *settingsRepo) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := []domain.Setting{}
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *settingsRepo) Upsert(ctx context.Context, s *domain.Setting) error {
	query := `
		INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, settings.description),
			updated_at = NOW()
		RETURNING description, updated_at`
	if err := r.db.QueryRow(ctx, query, s.Key, s.Value, s.Description).Scan(&s.Description, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
