package security

import (
	"context"
	"fmt"

	"go-recruitment-workflow/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEventRepository persists audit events to the audit_events table
type AuditEventRepository struct {
	db *pgxpool.Pool
}

func NewAuditEventRepository(db *pgxpool.Pool) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

func (r *AuditEventRepository) PersistEvent(ctx context.Context, event AuditEvent) error {
	query := `
		INSERT INTO audit_events (
			event_type, severity, service, environment, level,
			subject_type, subject_value, actor_id, ip_address, user_agent,
			request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
	`

	var details any
	if len(event.Details) > 0 {
		encoded, err := database.JSONText(event.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = encoded
	}

	// inet column rejects empty strings
	var ipAddr any
	if event.IP != "" {
		ipAddr = event.IP
	}
	var actorID any
	if event.ActorID != "" {
		actorID = event.ActorID
	}

	_, err := r.db.Exec(ctx, query,
		string(event.Event),
		string(event.Severity),
		event.Service,
		event.Environment,
		event.Level,
		event.SubjectType,
		event.SubjectValue,
		actorID,
		ipAddr,
		event.UserAgent,
		event.RequestID,
		details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to persist audit event: %w", err)
	}
	return nil
}
