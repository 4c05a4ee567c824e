package email

import (
	"context"
	"net/smtp"
	"testing"

	"go-recruitment-workflow/config"
	"go-recruitment-workflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured(captured *[]byte, to *[]string) *EmailService {
	s := NewEmailService(&config.Config{
		SMTPHost:     "smtp.test",
		SMTPPort:     "587",
		SMTPUsername: "robot@test",
		SMTPPassword: "secret",
	})
	s.send = func(addr string, a smtp.Auth, from string, rcpt []string, msg []byte) error {
		*captured = msg
		*to = rcpt
		return nil
	}
	return s
}

func TestNotifyStatusChangeIncludesReason(t *testing.T) {
	var msg []byte
	var to []string
	s := configured(&msg, &to)

	err := s.NotifyStatusChange(context.Background(), domain.StatusNotification{
		To:            "cand@test",
		CandidateName: "Ayse",
		Status:        domain.StatusRejected,
		Reason:        "Passport expired",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cand@test"}, to)
	assert.Contains(t, string(msg), "From: robot@test")
	assert.Contains(t, string(msg), "Passport expired")
	assert.Contains(t, string(msg), "Dear Ayse")
}

func TestNotifySkipsWhenUnconfiguredOrUnknownStatus(t *testing.T) {
	s := NewEmailService(&config.Config{})
	assert.NoError(t, s.NotifyStatusChange(context.Background(), domain.StatusNotification{To: "x@test", Status: domain.StatusApproved}))

	var msg []byte
	var to []string
	c := configured(&msg, &to)
	require.NoError(t, c.NotifyStatusChange(context.Background(), domain.StatusNotification{To: "x@test", Status: domain.StatusNewApplication}))
	assert.Nil(t, msg)
}
