package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(approved, pending, rejected int) DocumentSummary {
	return DocumentSummary{
		Total:    approved + pending + rejected,
		Approved: approved,
		Pending:  pending,
		Rejected: rejected,
	}
}

func TestEvaluateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ApplicationStatus
		action  ApplicationAction
		in      TransitionInput
		want    ApplicationStatus
		wantErr bool
	}{
		{"take new into evaluation", StatusNewApplication, ActionBeginEvaluation, TransitionInput{}, StatusEvaluation, false},
		{"approve new", StatusNewApplication, ActionApprove, TransitionInput{Docs: summary(3, 0, 0)}, StatusNewApplication, true},
		{"approve all approved", StatusEvaluation, ActionApprove, TransitionInput{Docs: summary(3, 0, 0)}, StatusApproved, false},
		{"approve with pending", StatusEvaluation, ActionApprove, TransitionInput{Docs: summary(2, 1, 0)}, StatusEvaluation, true},
		{"approve with rejected", StatusEvaluation, ActionApprove, TransitionInput{Docs: summary(2, 0, 1)}, StatusEvaluation, true},
		{"approve without documents", StatusEvaluation, ActionApprove, TransitionInput{}, StatusEvaluation, true},
		{"reject with reason", StatusEvaluation, ActionReject, TransitionInput{Reason: "fake diploma"}, StatusRejected, false},
		{"reject blank reason", StatusEvaluation, ActionReject, TransitionInput{Reason: " \t"}, StatusEvaluation, true},
		{"request update", StatusEvaluation, ActionRequestUpdate, TransitionInput{Docs: summary(2, 0, 1)}, StatusUpdateRequired, false},
		{"request update with pending", StatusEvaluation, ActionRequestUpdate, TransitionInput{Docs: summary(1, 1, 1)}, StatusEvaluation, true},
		{"request update nothing rejected", StatusEvaluation, ActionRequestUpdate, TransitionInput{Docs: summary(3, 0, 0)}, StatusEvaluation, true},
		{"evaluate twice", StatusEvaluation, ActionBeginEvaluation, TransitionInput{}, StatusEvaluation, true},
		{"reopen approved", StatusApproved, ActionRequestUpdate, TransitionInput{}, StatusUpdateRequired, false},
		{"reject approved", StatusApproved, ActionReject, TransitionInput{Reason: "x"}, StatusApproved, true},
		{"rejected is final", StatusRejected, ActionBeginEvaluation, TransitionInput{Docs: summary(1, 0, 0)}, StatusRejected, true},
		{"resubmitted", StatusUpdateRequired, ActionBeginEvaluation, TransitionInput{Docs: summary(2, 1, 0)}, StatusEvaluation, false},
		{"not resubmitted", StatusUpdateRequired, ActionBeginEvaluation, TransitionInput{Docs: summary(2, 0, 1)}, StatusUpdateRequired, true},
		{"reopened approved without resubmission", StatusUpdateRequired, ActionBeginEvaluation, TransitionInput{Docs: summary(2, 0, 0)}, StatusUpdateRequired, true},
		{"reopened approved after upload", StatusUpdateRequired, ActionBeginEvaluation, TransitionInput{Docs: summary(2, 1, 0)}, StatusEvaluation, false},
		{"waiting without documents", StatusUpdateRequired, ActionBeginEvaluation, TransitionInput{}, StatusUpdateRequired, true},
		{"approve while waiting", StatusUpdateRequired, ActionApprove, TransitionInput{Docs: summary(3, 0, 0)}, StatusUpdateRequired, true},
		{"unknown action", StatusEvaluation, ApplicationAction("ARCHIVE"), TransitionInput{}, StatusEvaluation, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateTransition(tt.current, tt.action, tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsPrecondition(err))
				assert.NotEmpty(t, err.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, !tt.wantErr, CanTransition(tt.current, tt.action, tt.in))
		})
	}
}

func TestReopenedApplicationWaitsForResubmission(t *testing.T) {
	docs := summary(2, 0, 0)
	next, err := EvaluateTransition(StatusApproved, ActionRequestUpdate, TransitionInput{Docs: docs})
	require.NoError(t, err)
	require.Equal(t, StatusUpdateRequired, next)

	next, err = EvaluateTransition(next, ActionBeginEvaluation, TransitionInput{Docs: docs})
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, StatusUpdateRequired, next)
	assert.Empty(t, AvailableActions(RoleConsultant, next, docs))

	next, err = EvaluateTransition(next, ActionBeginEvaluation, TransitionInput{Docs: summary(1, 1, 0)})
	require.NoError(t, err)
	assert.Equal(t, StatusEvaluation, next)
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t, []ApplicationAction{ActionBeginEvaluation}, AvailableActions(RoleConsultant, StatusNewApplication, DocumentSummary{}))
	assert.Equal(t, []ApplicationAction{ActionApprove, ActionReject}, AvailableActions(RoleAdmin, StatusEvaluation, summary(2, 0, 0)))
	assert.Equal(t, []ApplicationAction{ActionReject}, AvailableActions(RoleAdmin, StatusEvaluation, summary(1, 1, 0)))
	assert.Empty(t, AvailableActions(RoleMiddleman, StatusEvaluation, summary(2, 0, 0)))
	assert.Empty(t, AvailableActions(RoleConsultant, StatusRejected, summary(2, 0, 0)))
}
