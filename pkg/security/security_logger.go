package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventLoginSuccess       EventType = "login_success"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRouteDenied        EventType = "route_denied"
	EventDeletedAccountUse  EventType = "deleted_account_access"
	EventValidationFailed   EventType = "validation_failed"
	EventUploadRejected     EventType = "upload_rejected"
)

// AuditEvent is a security or workflow event written to the audit trail
type AuditEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	Service      string         `json:"service"`
	Environment  string         `json:"env"`
	Level        string         `json:"level"`
	Severity     Severity       `json:"severity"`
	Event        EventType      `json:"event"`
	SubjectType  string         `json:"subject_type,omitempty"`  // "email", "ip", "user_id"
	SubjectValue string         `json:"subject_value,omitempty"` // Masked or hashed for PII
	ActorID      string         `json:"actor_id,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// AuditLogger writes audit events through zap and optionally persists them
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	persistFunc func(ctx context.Context, event AuditEvent) error
}

var defaultLogger *AuditLogger

// InitAuditLogger initializes the audit logger with Zap
func InitAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	defaultLogger = NewAuditLogger(logger, serviceName, environment)
	return defaultLogger
}

// NewAuditLogger wraps an existing zap logger
func NewAuditLogger(z *zap.Logger, serviceName, environment string) *AuditLogger {
	return &AuditLogger{
		zapLogger:   z,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the default audit logger instance
func DefaultLogger() *AuditLogger {
	if defaultLogger == nil {
		return InitAuditLogger("recruitment-workflow", getEnvironment())
	}
	return defaultLogger
}

// SetPersistFunc sets the function to persist events to database
func (al *AuditLogger) SetPersistFunc(f func(ctx context.Context, event AuditEvent) error) {
	al.persistFunc = f
}

func levelFor(s Severity) zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH, SeverityCRITICAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = al.serviceName
	event.Environment = al.environment
	event.Severity = GetSeverity(event.Event)
	level := levelFor(event.Severity)
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(event.Severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	al.zapLogger.Log(level, string(event.Event), fields...)

	if al.persistFunc != nil {
		go func(e AuditEvent) {
			// Request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := al.persistFunc(ctx, e); err != nil {
				al.zapLogger.Error("Failed to persist audit event", zap.Error(err))
			}
		}(event)
	}
}

func (al *AuditLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": reason},
	})
}

func (al *AuditLogger) LogLoginBlocked(ctx context.Context, email, ip, requestID string, minutes int) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"duration_minutes": minutes},
	})
}

func (al *AuditLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	al.Log(ctx, AuditEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// LogRouteDenied records the gate redirecting a caller away from a path its role may not use
func (al *AuditLogger) LogRouteDenied(ctx context.Context, userID, role, path, ip, requestID string) {
	al.Log(ctx, AuditEvent{
		Event:        EventRouteDenied,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		ActorID:      userID,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"path": path, "role": role},
	})
}

// LogAction records a privileged workflow action such as a status decision
func (al *AuditLogger) LogAction(ctx context.Context, event EventType, actorID, subjectID, requestID string, details map[string]any) {
	al.Log(ctx, AuditEvent{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: subjectID,
		ActorID:      actorID,
		RequestID:    requestID,
		Details:      details,
	})
}

// Sync flushes any buffered log entries
func (al *AuditLogger) Sync() error {
	return al.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[at:]
}

// HashValue creates a short SHA256 fingerprint of a value
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
