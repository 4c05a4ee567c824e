package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDeletionConfirmation(t *testing.T) {
	assert.NoError(t, ValidateDeletionConfirmation(RequiredDeletionConfirmation))
	assert.NoError(t, ValidateDeletionConfirmation("\n  "+RequiredDeletionConfirmation+"\t"))

	rejected := []string{
		"",
		"Bilgilerimin tamamen silinmesini ve hesabımın kapatılmasını istiyorum",
		"bilgilerimin tamamen silinmesini ve hesabımın kapatılmasını istiyorum.",
		"Bilgilerimin tamamen silinmesini ve hesabimin kapatilmasini istiyorum.",
		"Bilgilerimin  tamamen silinmesini ve hesabımın kapatılmasını istiyorum.",
	}
	for _, text := range rejected {
		err := ValidateDeletionConfirmation(text)
		if assert.Error(t, err, text) {
			assert.True(t, IsPrecondition(err))
			assert.Contains(t, err.Error(), RequiredDeletionConfirmation)
		}
	}
}

func TestCanResolveDeletion(t *testing.T) {
	assert.True(t, CanResolveDeletion(DeletionPending))
	assert.False(t, CanResolveDeletion(DeletionApproved))
	assert.False(t, CanResolveDeletion(DeletionRejected))
}
