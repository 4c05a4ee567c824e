package domain

import (
	"context"
	"time"
)

// DocumentStorage is the object store holding uploaded files
type DocumentStorage interface {
	// Store saves data under folder and returns an opaque path
	Store(ctx context.Context, folder string, data []byte, contentType string) (string, error)
	// AccessURL issues a time-limited signed URL for path
	AccessURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}

// IdentityProvider issues and revokes principals and verifies passwords
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*Principal, error)
	PasswordLogin(ctx context.Context, email, password string) (principal *Principal, accessToken string, expiresIn int, err error)
	CreateUser(ctx context.Context, email, password string, role Role) (*Principal, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*Principal, error)
}

// ContentScanner inspects uploaded bytes for malware. It returns
// ErrMalwareDetected when the content must be rejected.
type ContentScanner interface {
	Scan(ctx context.Context, fileName string, data []byte) error
}

// UploadLimiter throttles uploads per client and per user
type UploadLimiter interface {
	AllowUpload(ctx context.Context, ip, userID string) (allowed bool, retryAfterSeconds int, err error)
}

type EventType string

const (
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventDocumentReviewed         EventType = "document.reviewed"
	EventDocumentUploaded         EventType = "document.uploaded"
	EventDeletionResolved         EventType = "account.deletion_resolved"
	EventUserProvisioned          EventType = "user.provisioned"
)

// Event is a domain event handed to the external notification pipeline
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Subject    string         `json:"subject"` // Profile the event is about
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// StatusNotification is the email a candidate receives on a decision
type StatusNotification struct {
	To            string
	CandidateName string
	Status        ApplicationStatus
	Reason        string
}

type Notifier interface {
	NotifyStatusChange(ctx context.Context, n StatusNotification) error
}
