package email

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"hrportal/internal/platform/config"
)

type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type Message struct {
	From    Address
	To      Address
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the mailer named by EMAIL_PROVIDER.
func New(cfg config.Config) Mailer {
	switch cfg.EmailProvider {
	case config.EmailProviderSMTP:
		return &SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			UseTLS:   cfg.SMTPUseTLS,
		}
	case config.EmailProviderBrevo:
		return &BrevoMailer{
			APIKey: cfg.BrevoAPIKey,
			URL:    cfg.BrevoURL,
			Client: &http.Client{Timeout: 15 * time.Second},
		}
	default:
		return LogMailer{}
	}
}

// LogMailer drops messages after logging the recipient. It never logs the body.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"to":      msg.To.Email,
		"subject": msg.Subject,
	}).Info("email delivery disabled, message dropped")
	return nil
}
