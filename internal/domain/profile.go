package domain

import (
	"context"
	"fmt"
	"time"
)

// Profile is the application-level record of one principal
type Profile struct {
	ID                string             `json:"id"` // Principal ID issued by the identity provider
	FullName          string             `json:"full_name"`
	Role              Role               `json:"role"`
	MiddlemanID       *string            `json:"middleman_id,omitempty"`
	ApplicationStatus *ApplicationStatus `json:"application_status,omitempty"` // CANDIDATE only
	DeletedAt         *time.Time         `json:"deleted_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (p *Profile) IsCandidate() bool {
	return p != nil && p.Role == RoleCandidate
}

func (p *Profile) IsDeleted() bool {
	return p != nil && p.DeletedAt != nil
}

// Status returns the application status, treating an unset status on a
// candidate as NEW_APPLICATION.
func (p *Profile) Status() ApplicationStatus {
	if p.ApplicationStatus == nil {
		return StatusNewApplication
	}
	return *p.ApplicationStatus
}

// NewCandidateProfile builds the initial profile of a candidate
func NewCandidateProfile(id, fullName string, middlemanID *string) *Profile {
	status := StatusNewApplication
	return &Profile{
		ID:                id,
		FullName:          fullName,
		Role:              RoleCandidate,
		MiddlemanID:       middlemanID,
		ApplicationStatus: &status,
	}
}

// Language is one spoken language of a candidate
type Language struct {
	Name  string `json:"name" binding:"required,max=50"`
	Level string `json:"level" binding:"required,language_level"`
}

var ValidLanguageLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2", "NATIVE"}

// CandidateInfo extends a candidate profile with contact and skill data
type CandidateInfo struct {
	ProfileID       string     `json:"profile_id"`
	Phone           *string    `json:"phone,omitempty"`
	Email           *string    `json:"email,omitempty"`
	Address         *string    `json:"address,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	NationalID      *string    `json:"national_id,omitempty"`
	EducationLevel  *string    `json:"education_level,omitempty"`
	ExperienceYears *int       `json:"experience_years,omitempty"`
	Skills          []string   `json:"skills"`
	Languages       []Language `json:"languages"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Actor is the authenticated caller of a usecase
type Actor struct {
	ID   string
	Role Role
}

// CanReadCandidate applies the ownership rules. A candidate sees only itself, a
// middleman only candidates linked to it, reviewers see every candidate.
func CanReadCandidate(actor Actor, candidate *Profile) bool {
	if !candidate.IsCandidate() || candidate.IsDeleted() {
		return false
	}
	switch actor.Role {
	case RoleConsultant, RoleAdmin:
		return true
	case RoleMiddleman:
		return candidate.MiddlemanID != nil && *candidate.MiddlemanID == actor.ID
	case RoleCandidate:
		return candidate.ID == actor.ID
	}
	return false
}

// ValidateRoleChange keeps middleman links pointing at MIDDLEMAN profiles: a
// middleman with linked candidates keeps its role until they are reassigned.
func ValidateRoleChange(from, to Role, linkedCandidates int) error {
	if from == RoleMiddleman && to != RoleMiddleman && linkedCandidates > 0 {
		return precondition(fmt.Sprintf("This middleman still has %d linked candidates; reassign them before changing the role", linkedCandidates))
	}
	return nil
}

// CanEditCandidate is CanReadCandidate plus the edit lock: candidates and their
// middleman may only edit while the application accepts changes.
func CanEditCandidate(actor Actor, candidate *Profile) bool {
	if !CanReadCandidate(actor, candidate) {
		return false
	}
	switch actor.Role {
	case RoleConsultant, RoleAdmin:
		return true
	default:
		return CanUploadDocument(candidate.Status())
	}
}

// ProfileFilter narrows user listings
type ProfileFilter struct {
	Role           Role   `form:"role"`
	IncludeDeleted bool   `form:"include_deleted"`
	Search         string `form:"q"`
	Page           int    `form:"page"`
	Limit          int    `form:"limit"`
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// Create inserts the profile or, when a provisioning trigger already did,
	// overwrites it with the given values.
	Create(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id string) error
	UpdateFullName(ctx context.Context, id, fullName string) error
	UpdateRole(ctx context.Context, id string, role Role, status *ApplicationStatus) error
	SetMiddleman(ctx context.Context, id string, middlemanID *string) error
	List(ctx context.Context, filter ProfileFilter) ([]Profile, int64, error)
	ListByMiddleman(ctx context.Context, middlemanID string) ([]Profile, error)
	CountByRole(ctx context.Context) (map[Role]int64, error)
}

type CandidateInfoRepository interface {
	GetByProfileID(ctx context.Context, profileID string) (*CandidateInfo, error)
	Upsert(ctx context.Context, info *CandidateInfo) error
	Delete(ctx context.Context, profileID string) error
}

// Session is the result of a successful login
type Session struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int      `json:"expires_in"`
	Profile      *Profile `json:"profile"`
	DefaultRoute string   `json:"default_route"`
}

// Principal is an identity issued by the external identity provider
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegisterInput is a self-registration request
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// NewUserInput is an administrative or middleman-initiated account creation
type NewUserInput struct {
	Email    string
	Password string
	FullName string
	Role     Role
	// MiddlemanID links a new candidate to its middleman
	MiddlemanID *string
	// Info is stored for new candidates when present
	Info *CandidateInfo
}

// Me is the caller's own view of its account
type Me struct {
	Profile      *Profile     `json:"profile"`
	Email        string       `json:"email,omitempty"`
	DefaultRoute string       `json:"default_route"`
	Capabilities Capabilities `json:"capabilities"`
}

type IdentityUsecase interface {
	// Resolve returns nil, nil when the principal has no profile yet
	Resolve(ctx context.Context, principalID string) (*Profile, error)
	ResolveRole(ctx context.Context, principalID string) (*Role, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, in RegisterInput) (*Profile, error)
	Me(ctx context.Context, principalID, email string) (*Me, error)
	UpdateFullName(ctx context.Context, principalID, fullName string) (*Profile, error)
}

// CandidateView is a candidate profile with its extension row
type CandidateView struct {
	Profile *Profile        `json:"profile"`
	Info    *CandidateInfo  `json:"info,omitempty"`
	Summary DocumentSummary `json:"document_summary"`
	// Editable tells the caller whether it may change info and documents now
	Editable bool `json:"editable"`
}

type CandidateUsecase interface {
	List(ctx context.Context, actor Actor) ([]Profile, error)
	Get(ctx context.Context, actor Actor, candidateID string) (*CandidateView, error)
	UpsertInfo(ctx context.Context, actor Actor, candidateID string, info *CandidateInfo) (*CandidateInfo, error)
	Create(ctx context.Context, actor Actor, in NewUserInput) (*Profile, error)
	AssignMiddleman(ctx context.Context, actor Actor, candidateID string, middlemanID *string) error
}

// AdminStats feeds the admin dashboard
type AdminStats struct {
	UsersByRole        map[Role]int64 `json:"users_by_role"`
	Applications       StatusCounts   `json:"applications"`
	PendingDocuments   int64          `json:"pending_documents"`
	PendingDeletionReq int64          `json:"pending_deletion_requests"`
}

type AdminUsecase interface {
	Stats(ctx context.Context, actor Actor) (*AdminStats, error)
	ListUsers(ctx context.Context, actor Actor, filter ProfileFilter) (*PaginatedResult[Profile], error)
	CreateUser(ctx context.Context, actor Actor, in NewUserInput) (*Profile, error)
	ChangeRole(ctx context.Context, actor Actor, userID string, role Role) (*Profile, error)
}
