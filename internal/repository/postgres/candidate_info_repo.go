package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateInfoRepo struct {
	db *pgxpool.Pool
}

func NewCandidateInfoRepository(db *pgxpool.Pool) domain.CandidateInfoRepository {
	return &candidateInfoRepo{db: db}
}

func (r *candidateInfoRepo) GetByProfileID(ctx context.Context, profileID string) (*domain.CandidateInfo, error) {
	query := `
		SELECT profile_id, phone, email, address, date_of_birth, national_id,
		       education_level, experience_years, COALESCE(skills, '{}'), COALESCE(languages, '[]'::jsonb),
		       created_at, updated_at
		FROM candidate_info WHERE profile_id = $1`

	var info domain.CandidateInfo
	var skills []string
	var languages []byte
	err := r.db.QueryRow(ctx, query, profileID).Scan(
		&info.ProfileID, &info.Phone, &info.Email, &info.Address, &info.DateOfBirth, &info.NationalID,
		&info.EducationLevel, &info.ExperienceYears, pq.Array(&skills), &languages,
		&info.CreatedAt, &info.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate info: %w", err)
	}

	info.Skills = uniqueSkills(skills)
	info.Languages = []domain.Language{}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &info.Languages); err != nil {
			return nil, fmt.Errorf("decode languages: %w", err)
		}
	}
	return &info, nil
}

func (r *candidateInfoRepo) Upsert(ctx context.Context, info *domain.CandidateInfo) error {
	skills := uniqueSkills(info.Skills)
	languages := info.Languages
	if languages == nil {
		languages = []domain.Language{}
	}
	languagesJSON, err := encodeLanguages(languages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidate_info (
			profile_id, phone, email, address, date_of_birth, national_id,
			education_level, experience_years, skills, languages, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, NOW(), NOW())
		ON CONFLICT (profile_id) DO UPDATE SET
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			address = EXCLUDED.address,
			date_of_birth = EXCLUDED.date_of_birth,
			national_id = EXCLUDED.national_id,
			education_level = EXCLUDED.education_level,
			experience_years = EXCLUDED.experience_years,
			skills = EXCLUDED.skills,
			languages = EXCLUDED.languages,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		info.ProfileID, info.Phone, info.Email, info.Address, info.DateOfBirth, info.NationalID,
		info.EducationLevel, info.ExperienceYears, pq.Array(skills), languagesJSON,
	).Scan(&info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert candidate info: %w", err)
	}
	info.Skills = skills
	info.Languages = languages
	return nil
}

// uniqueSkills drops blank and repeated entries, keeping first-seen order
func uniqueSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func encodeLanguages(languages []domain.Language) (string, error) {
	encoded, err := database.JSONText(languages)
	if err != nil {
		return "", fmt.Errorf("encode languages: %w", err)
	}
	return encoded, nil
}

func (r *candidateInfoRepo) Delete(ctx context.Context, profileID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM candidate_info WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("delete candidate info: %w", err)
	}
	return nil
}
