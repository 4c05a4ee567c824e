package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"go-recruitment-workflow/config"
	"go-recruitment-workflow/internal/domain"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends candidate notifications via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      sendFunc
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername // Brevo uses login email as from address
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		send:      smtp.SendMail,
	}
}

type statusEmailData struct {
	CandidateName string
	Headline      string
	Body          string
	Reason        string
}

var statusCopy = map[domain.ApplicationStatus]struct{ subject, headline, body string }{
	domain.StatusEvaluation: {
		"Your application is being evaluated",
		"Evaluation started",
		"A consultant has started reviewing your application and documents.",
	},
	domain.StatusApproved: {
		"Your application has been approved",
		"Congratulations!",
		"Your application has been approved. Your consultant will contact you about the next steps.",
	},
	domain.StatusRejected: {
		"Update on your application",
		"Application not accepted",
		"Unfortunately your application could not be accepted.",
	},
	domain.StatusUpdateRequired: {
		"Action required on your application",
		"Please update your documents",
		"Your application needs changes before it can be evaluated. Documents are unlocked for editing again.",
	},
}

const statusEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .reason { background: white; padding: 15px; border-left: 4px solid #0066cc; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Headline}}</h1>
        </div>
        <div class="content">
            <p>Dear {{.CandidateName}},</p>
            <p>{{.Body}}</p>
            {{if .Reason}}<div class="reason">{{.Reason}}</div>{{end}}
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>`

var statusTmpl = template.Must(template.New("status").Parse(statusEmailTemplate))

// NotifyStatusChange emails the candidate about a new application status
func (s *EmailService) NotifyStatusChange(ctx context.Context, n domain.StatusNotification) error {
	if !s.IsConfigured() || n.To == "" {
		return nil
	}
	copyText, ok := statusCopy[n.Status]
	if !ok {
		return nil
	}

	var body bytes.Buffer
	if err := statusTmpl.Execute(&body, statusEmailData{
		CandidateName: n.CandidateName,
		Headline:      copyText.headline,
		Body:          copyText.body,
		Reason:        n.Reason,
	}); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := buildMessage(s.fromEmail, n.To, copyText.subject, body.String())

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{n.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, to, subject, html,
	))
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
