package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentCV        DocumentType = "CV"
	DocumentPolice    DocumentType = "POLICE"
	DocumentResidence DocumentType = "RESIDENCE"
	DocumentKimlik    DocumentType = "KIMLIK"
	DocumentDiploma   DocumentType = "DIPLOMA"
)

var ValidDocumentTypes = []DocumentType{DocumentCV, DocumentPolice, DocumentResidence, DocumentKimlik, DocumentDiploma}

func (t DocumentType) Valid() bool {
	return slices.Contains(ValidDocumentTypes, t)
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Document is a file uploaded for a candidate profile
type Document struct {
	ID           string         `json:"id"`
	ProfileID    string         `json:"profile_id"`
	DocumentType DocumentType   `json:"document_type"`
	FileName     string         `json:"file_name"`
	FilePath     string         `json:"-"` // Opaque storage locator, exposed only via signed URLs
	MimeType     string         `json:"mime_type"`
	Status       DocumentStatus `json:"status"`
	ReviewedBy   *string        `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes  *string        `json:"review_notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Joined for the review queue
	CandidateName *string `json:"candidate_name,omitempty"`
}

// ReviewDecision is the verdict a reviewer records on a PENDING document
type ReviewDecision string

const (
	ReviewApprove ReviewDecision = "APPROVE"
	ReviewReject  ReviewDecision = "REJECT"
)

// CanUploadDocument reports whether documents of a candidate in appStatus may
// be uploaded or replaced. Editing is locked while a reviewer works on the
// application and after a final decision.
func CanUploadDocument(appStatus ApplicationStatus) bool {
	return appStatus == StatusNewApplication || appStatus == StatusUpdateRequired
}

// EvaluateReview validates a review decision against the document's current
// state and returns the resulting state.
func EvaluateReview(current DocumentStatus, decision ReviewDecision, notes string) (DocumentStatus, error) {
	if current != DocumentPending {
		return current, precondition("Only pending documents can be reviewed; this document is " + string(current))
	}
	switch decision {
	case ReviewApprove:
		return DocumentApproved, nil
	case ReviewReject:
		if strings.TrimSpace(notes) == "" {
			return current, precondition("A rejection reason is required")
		}
		return DocumentRejected, nil
	default:
		return current, precondition("Unknown review decision: " + string(decision))
	}
}

// CanTransitionDocument is the boolean form of EvaluateReview
func CanTransitionDocument(current DocumentStatus, decision ReviewDecision, notes string) bool {
	_, err := EvaluateReview(current, decision, notes)
	return err == nil
}

// DocumentSummary is the aggregate view of a candidate's documents that gates
// application decisions.
type DocumentSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func Summarize(docs []Document) DocumentSummary {
	var s DocumentSummary
	for _, d := range docs {
		s.Total++
		switch d.Status {
		case DocumentPending:
			s.Pending++
		case DocumentApproved:
			s.Approved++
		case DocumentRejected:
			s.Rejected++
		}
	}
	return s
}

// AllApproved is false for an empty set.
func (s DocumentSummary) AllApproved() bool {
	return s.Total > 0 && s.Approved == s.Total
}

// AllReviewed is false for an empty set.
func (s DocumentSummary) AllReviewed() bool {
	return s.Total > 0 && s.Pending == 0
}

// DocumentUpload carries a validated file on its way to storage
type DocumentUpload struct {
	DocumentType DocumentType
	FileName     string
	MimeType     string
	Data         []byte
	// ClientIP feeds the per-client upload limiter
	ClientIP     string
}

type DocumentRepository interface {
	ListByProfile(ctx context.Context, profileID string) ([]Document, error)
	GetByID(ctx context.Context, id string) (*Document, error)
	GetByProfileAndType(ctx context.Context, profileID string, docType DocumentType) (*Document, error)
	Create(ctx context.Context, doc *Document) error
	// Replace swaps the file of an existing document and resets it to PENDING
	Replace(ctx context.Context, doc *Document) error
	// Review records a verdict; it fails with ErrStaleState unless the document is still PENDING
	Review(ctx context.Context, id string, status DocumentStatus, reviewerID string, notes *string) (*Document, error)
	ListPending(ctx context.Context, page, limit int) ([]Document, int64, error)
}

type DocumentUsecase interface {
	List(ctx context.Context, actor Actor, candidateID string) ([]Document, error)
	Upload(ctx context.Context, actor Actor, candidateID string, upload DocumentUpload) (*Document, error)
	Review(ctx context.Context, actor Actor, documentID string, decision ReviewDecision, notes string) (*Document, error)
	PendingQueue(ctx context.Context, actor Actor, page, limit int) (*PaginatedResult[Document], error)
	AccessURL(ctx context.Context, actor Actor, candidateID, documentID string) (string, error)
}
