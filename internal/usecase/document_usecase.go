package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"
)

const maxFileNameLength = 200

type documentUsecase struct {
	profiles  domain.ProfileRepository
	documents domain.DocumentRepository
	storage   domain.DocumentStorage
	scanner   domain.ContentScanner
	limiter   domain.UploadLimiter
	events    domain.EventPublisher
	audit     *security.AuditLogger
	urlTTL    time.Duration
}

func NewDocumentUsecase(
	profiles domain.ProfileRepository,
	documents domain.DocumentRepository,
	storage domain.DocumentStorage,
	scanner domain.ContentScanner,
	limiter domain.UploadLimiter,
	events domain.EventPublisher,
	audit *security.AuditLogger,
	urlTTL time.Duration,
) domain.DocumentUsecase {
	return &documentUsecase{
		profiles:  profiles,
		documents: documents,
		storage:   storage,
		scanner:   scanner,
		limiter:   limiter,
		events:    events,
		audit:     audit,
		urlTTL:    urlTTL,
	}
}

func (u *documentUsecase) List(ctx context.Context, actor domain.Actor, candidateID string) ([]domain.Document, error) {
	if _, err := loadCandidate(ctx, u.profiles, actor, candidateID); err != nil {
		return nil, err
	}
	docs, err := u.documents.ListByProfile(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return docs, nil
}

// Upload stores a new document or replaces the one of the same type. The
// replaced object is removed only after the row points at the new one.
func (u *documentUsecase) Upload(ctx context.Context, actor domain.Actor, candidateID string, upload domain.DocumentUpload) (*domain.Document, error) {
	if !domain.CapabilitiesOf(actor.Role).UploadDocuments {
		return nil, apperror.Forbidden("Your role cannot upload documents")
	}
	candidate, err := loadCandidate(ctx, u.profiles, actor, candidateID)
	if err != nil {
		return nil, err
	}
	if !domain.CanUploadDocument(candidate.Status()) {
		return nil, apperror.Precondition("Documents can only be uploaded while the application is new or an update was requested (current status: " + string(candidate.Status()) + ")")
	}
	if !upload.DocumentType.Valid() {
		return nil, apperror.BadRequest("Unknown document type: " + string(upload.DocumentType))
	}

	check := security.DocumentPolicy.Validate(upload.FileName, upload.Data)
	if !check.Valid {
		u.rejectUpload(ctx, actor, candidateID, upload, check.Error)
		return nil, apperror.BadRequest("Invalid file: " + check.Error)
	}

	if u.limiter != nil {
		allowed, retryAfter, err := u.limiter.AllowUpload(ctx, upload.ClientIP, actor.ID)
		if err != nil {
			logger.Log.Warn("Upload limiter unavailable", "error", err)
		}
		if !allowed {
			return nil, apperror.TooManyRequests(fmt.Sprintf("Upload limit reached, try again in %d seconds", retryAfter))
		}
	}

	if err := u.scanner.Scan(ctx, upload.FileName, upload.Data); err != nil {
		u.rejectUpload(ctx, actor, candidateID, upload, err.Error())
		return nil, apperror.BadRequest("The file was rejected by the malware scan")
	}

	existing, err := u.documents.GetByProfileAndType(ctx, candidateID, upload.DocumentType)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	path, err := u.storage.Store(ctx, "documents/"+candidateID, upload.Data, check.ContentType)
	if err != nil {
		return nil, apperror.Dependency("Could not store the file, please try again", err)
	}

	doc := &domain.Document{
		ProfileID:    candidateID,
		DocumentType: upload.DocumentType,
		FileName:     cleanFileName(upload.FileName),
		FilePath:     path,
		MimeType:     check.ContentType,
	}
	if existing == nil {
		err = u.documents.Create(ctx, doc)
	} else {
		doc.ID = existing.ID
		err = u.documents.Replace(ctx, doc)
	}
	if err != nil {
		u.removeObject(ctx, path)
		if errors.Is(err, domain.ErrStaleState) {
			return nil, apperror.Precondition("The application stopped accepting documents while the file was uploading; please reload and try again")
		}
		return nil, apperror.Internal(err)
	}

	if existing != nil && existing.FilePath != path {
		u.removeObject(ctx, existing.FilePath)
	}

	afterCommit("event publish", u.events.Publish(ctx, domain.Event{
		Type:    domain.EventDocumentUploaded,
		Subject: candidateID,
		ActorID: actor.ID,
		Data:    map[string]any{"document_id": doc.ID, "document_type": string(doc.DocumentType), "replaced": existing != nil},
	}), "document_id", doc.ID)

	return doc, nil
}

func (u *documentUsecase) rejectUpload(ctx context.Context, actor domain.Actor, candidateID string, upload domain.DocumentUpload, reason string) {
	u.audit.Log(ctx, security.AuditEvent{
		Event:        security.EventUploadRejected,
		SubjectType:  "user_id",
		SubjectValue: candidateID,
		ActorID:      actor.ID,
		IP:           upload.ClientIP,
		RequestID:    requestID(ctx),
		Details:      map[string]any{"file_name": cleanFileName(upload.FileName), "size": len(upload.Data), "reason": reason},
	})
}

// removeObject deletes a stored object on a context that outlives the request
func (u *documentUsecase) removeObject(ctx context.Context, path string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := u.storage.Delete(ctx, path); err != nil {
		logger.Log.Warn("Failed to delete stored object", "path", path, "error", err)
	}
}

func (u *documentUsecase) Review(ctx context.Context, actor domain.Actor, documentID string, decision domain.ReviewDecision, notes string) (*domain.Document, error) {
	if !domain.CapabilitiesOf(actor.Role).ReviewDocuments {
		return nil, apperror.Forbidden("Your role cannot review documents")
	}

	doc, err := u.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if doc == nil {
		return nil, apperror.NotFound(msgDocumentNotFound)
	}
	if _, err := loadCandidate(ctx, u.profiles, actor, doc.ProfileID); err != nil {
		return nil, apperror.NotFound(msgDocumentNotFound)
	}

	next, err := domain.EvaluateReview(doc.Status, decision, notes)
	if err != nil {
		return nil, translate(err, msgDocumentNotFound)
	}

	reviewed, err := u.documents.Review(ctx, documentID, next, actor.ID, strPtr(strings.TrimSpace(notes)))
	if errors.Is(err, domain.ErrStaleState) {
		return nil, apperror.Precondition("This document has already been reviewed")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.LogAction(ctx, security.EventDocumentReviewed, actor.ID, reviewed.ProfileID, requestID(ctx), map[string]any{
		"document_id":   reviewed.ID,
		"document_type": string(reviewed.DocumentType),
		"status":        string(reviewed.Status),
	})
	afterCommit("event publish", u.events.Publish(ctx, domain.Event{
		Type:    domain.EventDocumentReviewed,
		Subject: reviewed.ProfileID,
		ActorID: actor.ID,
		Data:    map[string]any{"document_id": reviewed.ID, "document_type": string(reviewed.DocumentType), "status": string(reviewed.Status)},
	}), "document_id", reviewed.ID)

	return reviewed, nil
}

func (u *documentUsecase) PendingQueue(ctx context.Context, actor domain.Actor, page, limit int) (*domain.PaginatedResult[domain.Document], error) {
	if !domain.CapabilitiesOf(actor.Role).ReviewDocuments {
		return nil, apperror.Forbidden("Your role cannot review documents")
	}
	page, limit = normalizePage(page, limit)
	docs, total, err := u.documents.ListPending(ctx, page, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return paginate(docs, total, page, limit), nil
}

// AccessURL issues a short-lived signed URL for a document the actor may see
func (u *documentUsecase) AccessURL(ctx context.Context, actor domain.Actor, candidateID, documentID string) (string, error) {
	if _, err := loadCandidate(ctx, u.profiles, actor, candidateID); err != nil {
		return "", err
	}
	doc, err := u.documents.GetByID(ctx, documentID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if doc == nil || doc.ProfileID != candidateID {
		return "", apperror.NotFound(msgDocumentNotFound)
	}
	url, err := u.storage.AccessURL(ctx, doc.FilePath, u.urlTTL)
	if err != nil {
		return "", apperror.Dependency("Could not open the document right now, please try again", err)
	}
	return url, nil
}

// cleanFileName keeps the display name of an upload free of paths and control characters
func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	if r := []rune(name); len(r) > maxFileNameLength {
		name = string(r[len(r)-maxFileNameLength:])
	}
	return name
}
