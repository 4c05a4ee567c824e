package usecase_test

import (
	"context"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/security"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testAudit() *security.AuditLogger {
	return security.NewAuditLogger(zap.NewNop(), "test", "test")
}

// Mock Repositories
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProfileRepo) UpdateFullName(ctx context.Context, id, fullName string) error {
	return m.Called(ctx, id, fullName).Error(0)
}

func (m *MockProfileRepo) UpdateRole(ctx context.Context, id string, role domain.Role, status *domain.ApplicationStatus) error {
	return m.Called(ctx, id, role, status).Error(0)
}

func (m *MockProfileRepo) SetMiddleman(ctx context.Context, id string, middlemanID *string) error {
	return m.Called(ctx, id, middlemanID).Error(0)
}

func (m *MockProfileRepo) List(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepo) ListByMiddleman(ctx context.Context, middlemanID string) ([]domain.Profile, error) {
	args := m.Called(ctx, middlemanID)
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.Role]int64), args.Error(1)
}

type MockInfoRepo struct {
	mock.Mock
}

func (m *MockInfoRepo) GetByProfileID(ctx context.Context, profileID string) (*domain.CandidateInfo, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateInfo), args.Error(1)
}

func (m *MockInfoRepo) Upsert(ctx context.Context, info *domain.CandidateInfo) error {
	return m.Called(ctx, info).Error(0)
}

func (m *MockInfoRepo) Delete(ctx context.Context, profileID string) error {
	return m.Called(ctx, profileID).Error(0)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) ListByProfile(ctx context.Context, profileID string) ([]domain.Document, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) GetByProfileAndType(ctx context.Context, profileID string, docType domain.DocumentType) (*domain.Document, error) {
	args := m.Called(ctx, profileID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepo) Replace(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepo) Review(ctx context.Context, id string, status domain.DocumentStatus, reviewerID string, notes *string) (*domain.Document, error) {
	args := m.Called(ctx, id, status, reviewerID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListPending(ctx context.Context, page, limit int) ([]domain.Document, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]domain.Document), args.Get(1).(int64), args.Error(2)
}

// MockApplicationRepo runs decide against the configured state so the usecase
// callback is exercised exactly as inside the store transaction.
type MockApplicationRepo struct {
	mock.Mock
	Candidate *domain.Profile
	Docs      []domain.Document
}

func (m *MockApplicationRepo) Transition(ctx context.Context, candidateID, actorID string, action domain.ApplicationAction, reason *string, decide domain.TransitionFunc) (*domain.Decision, error) {
	m.Called(ctx, candidateID, actorID, action, reason)
	if m.Candidate == nil || m.Candidate.ID != candidateID {
		return nil, domain.ErrNotFound
	}
	next, err := decide(m.Candidate, m.Docs)
	if err != nil {
		return nil, err
	}
	from := m.Candidate.Status()
	m.Candidate.ApplicationStatus = &next
	return &domain.Decision{
		ID:         "dec-1",
		ProfileID:  candidateID,
		ActorID:    actorID,
		Action:     action,
		FromStatus: from,
		ToStatus:   next,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockApplicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.ApplicationSummary, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ApplicationSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepo) History(ctx context.Context, candidateID string) ([]domain.Decision, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.Decision), args.Error(1)
}

func (m *MockApplicationRepo) CountByStatus(ctx context.Context, middlemanID string) (domain.StatusCounts, error) {
	args := m.Called(ctx, middlemanID)
	return args.Get(0).(domain.StatusCounts), args.Error(1)
}

type MockDeletionRepo struct {
	mock.Mock
}

func (m *MockDeletionRepo) Create(ctx context.Context, req *domain.AccountDeletionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockDeletionRepo) GetByID(ctx context.Context, id string) (*domain.AccountDeletionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountDeletionRequest), args.Error(1)
}

func (m *MockDeletionRepo) GetLatestByProfile(ctx context.Context, profileID string) (*domain.AccountDeletionRequest, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountDeletionRequest), args.Error(1)
}

func (m *MockDeletionRepo) HasPending(ctx context.Context, profileID string) (bool, error) {
	args := m.Called(ctx, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeletionRepo) List(ctx context.Context, filter domain.DeletionFilter) ([]domain.AccountDeletionRequest, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AccountDeletionRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeletionRepo) Approve(ctx context.Context, id, reviewerID string, at time.Time) error {
	return m.Called(ctx, id, reviewerID, at).Error(0)
}

func (m *MockDeletionRepo) Reject(ctx context.Context, id, reviewerID string, at time.Time) error {
	return m.Called(ctx, id, reviewerID, at).Error(0)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context, key domain.SettingKey) (*domain.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Setting), args.Error(1)
}

func (m *MockSettingsRepo) List(ctx context.Context) ([]domain.Setting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Setting), args.Error(1)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, s *domain.Setting) error {
	return m.Called(ctx, s).Error(0)
}

// Mock collaborators
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*domain.Principal, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

func (m *MockIdentityProvider) PasswordLogin(ctx context.Context, email, password string) (*domain.Principal, string, int, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", 0, args.Error(3)
	}
	return args.Get(0).(*domain.Principal), args.String(1), args.Int(2), args.Error(3)
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password string, role domain.Role) (*domain.Principal, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, id string) (*domain.Principal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, folder, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) AccessURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, path, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, fileName string, data []byte) error {
	return m.Called(ctx, fileName, data).Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	args := m.Called(ctx, ip, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, n domain.StatusNotification) error {
	return m.Called(ctx, n).Error(0)
}

func statusPtr(s domain.ApplicationStatus) *domain.ApplicationStatus {
	return &s
}

func candidate(id string, middlemanID string, status domain.ApplicationStatus) *domain.Profile {
	p := &domain.Profile{ID: id, FullName: "Ayse Kaya", Role: domain.RoleCandidate, ApplicationStatus: statusPtr(status)}
	if middlemanID != "" {
		p.MiddlemanID = &middlemanID
	}
	return p
}
