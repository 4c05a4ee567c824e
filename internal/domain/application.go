package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// ApplicationStatus is the aggregate review state of a CANDIDATE profile
type ApplicationStatus string

const (
	StatusNewApplication ApplicationStatus = "NEW_APPLICATION"
	StatusEvaluation     ApplicationStatus = "EVALUATION"
	StatusApproved       ApplicationStatus = "APPROVED"
	StatusRejected       ApplicationStatus = "REJECTED"
	StatusUpdateRequired ApplicationStatus = "UPDATE_REQUIRED"
)

var ValidApplicationStatuses = []ApplicationStatus{
	StatusNewApplication, StatusEvaluation, StatusApproved, StatusRejected, StatusUpdateRequired,
}

func (s ApplicationStatus) Valid() bool {
	return slices.Contains(ValidApplicationStatuses, s)
}

// ApplicationAction is a reviewer decision on an application
type ApplicationAction string

const (
	ActionBeginEvaluation ApplicationAction = "BEGIN_EVALUATION"
	ActionApprove         ApplicationAction = "APPROVE"
	ActionReject          ApplicationAction = "REJECT"
	ActionRequestUpdate   ApplicationAction = "REQUEST_UPDATE"
)

// TransitionInput is everything a transition decision depends on. Docs must be
// read at decision time, never reused from an earlier request.
type TransitionInput struct {
	Docs   DocumentSummary
	Reason string
}

// EvaluateTransition is the single source of truth for the application state
// machine. It returns the next state or a PreconditionError naming the unmet
// condition.
func EvaluateTransition(current ApplicationStatus, action ApplicationAction, in TransitionInput) (ApplicationStatus, error) {
	switch current {
	case StatusNewApplication:
		if action == ActionBeginEvaluation {
			return StatusEvaluation, nil
		}
		return current, precondition("A new application must be taken into evaluation before a decision can be recorded")

	case StatusEvaluation:
		switch action {
		case ActionApprove:
			if in.Docs.Total == 0 {
				return current, precondition("Cannot approve an application without documents")
			}
			if !in.Docs.AllApproved() {
				return current, precondition("All documents must be approved before the application can be approved")
			}
			return StatusApproved, nil
		case ActionReject:
			if strings.TrimSpace(in.Reason) == "" {
				return current, precondition("A rejection reason is required")
			}
			return StatusRejected, nil
		case ActionRequestUpdate:
			if in.Docs.Total == 0 {
				return current, precondition("Cannot request an update for an application without documents")
			}
			if !in.Docs.AllReviewed() {
				return current, precondition("All documents must be reviewed before requesting an update")
			}
			if in.Docs.Rejected == 0 {
				return current, precondition("At least one document must be rejected to request an update")
			}
			return StatusUpdateRequired, nil
		case ActionBeginEvaluation:
			return current, precondition("The application is already under evaluation")
		}

	case StatusApproved:
		if action == ActionRequestUpdate {
			return StatusUpdateRequired, nil
		}
		return current, precondition("An approved application can only be sent back for an update")

	case StatusRejected:
		return current, precondition("The application has been rejected; no further decisions are possible")

	case StatusUpdateRequired:
		if action == ActionBeginEvaluation {
			if in.Docs.Rejected > 0 || in.Docs.Pending == 0 {
				return current, precondition("The candidate has not resubmitted the rejected documents yet")
			}
			return StatusEvaluation, nil
		}
		return current, precondition("Waiting for the candidate to resubmit documents")
	}
	return current, precondition("Unsupported action " + string(action) + " for status " + string(current))
}

// CanTransition is the boolean form of EvaluateTransition
func CanTransition(current ApplicationStatus, action ApplicationAction, in TransitionInput) bool {
	_, err := EvaluateTransition(current, action, in)
	return err == nil
}

// AvailableActions lists the actions role may take right now. REJECT is listed
// whenever it is reachable since its reason is supplied with the action.
func AvailableActions(role Role, current ApplicationStatus, docs DocumentSummary) []ApplicationAction {
	actions := []ApplicationAction{}
	for _, a := range CapabilitiesOf(role).ApplicationActions {
		in := TransitionInput{Docs: docs}
		if a == ActionReject {
			in.Reason = "-"
		}
		if CanTransition(current, a, in) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Decision is the audit record of one application transition
type Decision struct {
	ID         string            `json:"id"`
	ProfileID  string            `json:"profile_id"`
	ActorID    string            `json:"actor_id"`
	Action     ApplicationAction `json:"action"`
	FromStatus ApplicationStatus `json:"from_status"`
	ToStatus   ApplicationStatus `json:"to_status"`
	Reason     *string           `json:"reason,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TransitionFunc decides the next state from freshly loaded state. It runs
// inside the store transaction that commits the result.
type TransitionFunc func(candidate *Profile, docs []Document) (ApplicationStatus, error)

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Status      ApplicationStatus `form:"status"`
	MiddlemanID string            `form:"-"`
	Search      string            `form:"q"`
	Page        int               `form:"page"`
	Limit       int               `form:"limit"`
}

// ApplicationSummary is one row of the application pipeline
type ApplicationSummary struct {
	ProfileID         string            `json:"profile_id"`
	FullName          string            `json:"full_name"`
	MiddlemanID       *string           `json:"middleman_id,omitempty"`
	MiddlemanName     *string           `json:"middleman_name,omitempty"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	Email             *string           `json:"email,omitempty"`
	Phone             *string           `json:"phone,omitempty"`
	Documents         DocumentSummary   `json:"documents"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ApplicationDetail is the reviewer's full view of one candidate
type ApplicationDetail struct {
	Profile          *Profile            `json:"profile"`
	Info             *CandidateInfo      `json:"info,omitempty"`
	Documents        []Document          `json:"documents"`
	Summary          DocumentSummary     `json:"document_summary"`
	AvailableActions []ApplicationAction `json:"available_actions"`
	History          []Decision          `json:"history"`
}

// StatusCounts maps each application status to the number of candidates in it
type StatusCounts map[ApplicationStatus]int64

type ApplicationRepository interface {
	// Transition locks the candidate row, re-reads its documents, applies
	// decide and persists the new status together with a Decision record.
	Transition(ctx context.Context, candidateID, actorID string, action ApplicationAction, reason *string, decide TransitionFunc) (*Decision, error)
	List(ctx context.Context, filter ApplicationFilter) ([]ApplicationSummary, int64, error)
	History(ctx context.Context, candidateID string) ([]Decision, error)
	CountByStatus(ctx context.Context, middlemanID string) (StatusCounts, error)
}

type ApplicationUsecase interface {
	Decide(ctx context.Context, actor Actor, candidateID string, action ApplicationAction, reason string) (*Decision, error)
	List(ctx context.Context, actor Actor, filter ApplicationFilter) (*PaginatedResult[ApplicationSummary], error)
	Detail(ctx context.Context, actor Actor, candidateID string) (*ApplicationDetail, error)
	Export(ctx context.Context, actor Actor, filter ApplicationFilter) ([]byte, error)
	Stats(ctx context.Context, actor Actor) (StatusCounts, error)
}
