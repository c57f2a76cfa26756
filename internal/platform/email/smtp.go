package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	UseTLS   bool
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To.Email) == "" {
		return fmt.Errorf("smtp: empty recipient")
	}
	addr := net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
	body := buildMessage(msg)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if s.User != "" {
		if err := client.Auth(smtp.PlainAuth("", s.User, s.Password, s.Host)); err != nil {
			return err
		}
	}

	if err := client.Mail(msg.From.Email); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To.Email); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func formatAddress(a Address) string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

func buildMessage(msg Message) []byte {
	contentType := "text/plain; charset=\"UTF-8\""
	content := msg.Text
	if msg.HTML != "" {
		contentType = "text/html; charset=\"UTF-8\""
		content = msg.HTML
	}
	headers := []string{
		"From: " + formatAddress(msg.From),
		"To: " + formatAddress(msg.To),
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + content)
}
