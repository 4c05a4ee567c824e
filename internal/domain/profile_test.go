package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandidateOwnership(t *testing.T) {
	m1 := "m1"
	evaluation := StatusEvaluation
	now := time.Now()

	linked := NewCandidateProfile("c1", "Ayse", &m1)
	unlinked := NewCandidateProfile("c2", "Mehmet", nil)
	locked := &Profile{ID: "c3", Role: RoleCandidate, MiddlemanID: &m1, ApplicationStatus: &evaluation}
	deleted := &Profile{ID: "c4", Role: RoleCandidate, MiddlemanID: &m1, DeletedAt: &now}
	consultant := &Profile{ID: "k1", Role: RoleConsultant}

	tests := []struct {
		name      string
		actor     Actor
		target    *Profile
		wantRead  bool
		wantWrite bool
	}{
		{"candidate self", Actor{"c1", RoleCandidate}, linked, true, true},
		{"candidate other", Actor{"c2", RoleCandidate}, linked, false, false},
		{"candidate self locked", Actor{"c3", RoleCandidate}, locked, true, false},
		{"middleman own", Actor{"m1", RoleMiddleman}, linked, true, true},
		{"middleman own locked", Actor{"m1", RoleMiddleman}, locked, true, false},
		{"middleman foreign", Actor{"m2", RoleMiddleman}, linked, false, false},
		{"middleman unlinked", Actor{"m1", RoleMiddleman}, unlinked, false, false},
		{"consultant any", Actor{"k1", RoleConsultant}, unlinked, true, true},
		{"consultant locked", Actor{"k1", RoleConsultant}, locked, true, true},
		{"admin any", Actor{"a1", RoleAdmin}, locked, true, true},
		{"deleted candidate", Actor{"a1", RoleAdmin}, deleted, false, false},
		{"not a candidate", Actor{"a1", RoleAdmin}, consultant, false, false},
		{"nil target", Actor{"a1", RoleAdmin}, nil, false, false},
		{"unknown role", Actor{"x", Role("GUEST")}, linked, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, CanReadCandidate(tt.actor, tt.target))
			assert.Equal(t, tt.wantWrite, CanEditCandidate(tt.actor, tt.target))
		})
	}
}

func TestProfileStatusDefaultsToNew(t *testing.T) {
	p := &Profile{ID: "c1", Role: RoleCandidate}
	assert.Equal(t, StatusNewApplication, p.Status())
	assert.Equal(t, StatusNewApplication, NewCandidateProfile("c2", "A", nil).Status())
}

func TestValidateRoleChange(t *testing.T) {
	assert.NoError(t, ValidateRoleChange(RoleMiddleman, RoleConsultant, 0))
	assert.NoError(t, ValidateRoleChange(RoleMiddleman, RoleMiddleman, 3))
	assert.NoError(t, ValidateRoleChange(RoleCandidate, RoleConsultant, 0))

	err := ValidateRoleChange(RoleMiddleman, RoleCandidate, 2)
	assert.True(t, IsPrecondition(err))
	assert.Contains(t, err.Error(), "2 linked candidates")
}
