// Package email sends reservation confirmation mail over SMTP.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service wraps an SMTP client and the parsed confirmation template.
type Service struct {
	client    *mail.Client
	from      string
	fromName  string
	templates *template.Template
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// confirmationData feeds the confirmation template.
type confirmationData struct {
	RoomName  string
	StartTime string
	EndTime   string
}

// NewService creates the mail client and parses the embedded templates.
func NewService(cfg Config) (*Service, error) {
	client, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Service{
		client:    client,
		from:      cfg.From,
		fromName:  cfg.FromName,
		templates: tmpl,
	}, nil
}

// SendConfirmation sends the booking confirmation for a reserved room.
// The start and end labels are already human-formatted by the caller.
// Delivery is retried a few times with backoff; SMTP hiccups are common
// and the consumer treats a final failure as best-effort anyway.
func (s *Service) SendConfirmation(ctx context.Context, toEmail, room, startTime, endTime string) error {
	msg := mail.NewMsg()

	if err := msg.From(fmt.Sprintf("%s <%s>", s.fromName, s.from)); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject("Room Reservation Confirmation")

	var htmlBody bytes.Buffer
	data := confirmationData{RoomName: room, StartTime: startTime, EndTime: endTime}
	if err := s.templates.ExecuteTemplate(&htmlBody, "confirmation.html", data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, htmlBody.String())

	return retry.Do(
		func() error { return s.client.DialAndSendWithContext(ctx, msg) },
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.Context(ctx),
	)
}
