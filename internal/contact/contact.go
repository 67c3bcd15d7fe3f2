// Package contact delivers messages from the site's contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// Message is one contact form submission.
type Message struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email,max=200"`
	Message string `form:"message" validate:"required,max=5000"`
}

var validate = validator.New()

// Validate trims the fields and checks them.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)

	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch {
	case fe.Tag() == "required":
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("Please enter your %s.", field)}
	case fe.Tag() == "email":
		return &domain.ValidationError{Field: field, Message: "Please enter a valid email address."}
	default:
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("Your %s is too long.", field)}
	}
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Pass != ""
}

type SMTPMailer struct {
	cfg  SMTPConfig
	log  *slog.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if !s.cfg.Configured() {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	err := s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{s.cfg.To}, compose(s.cfg, m))
	if err != nil {
		s.log.Error("error sending email", "error", err)
		return &domain.GatewayError{Op: "smtp.send", Err: err}
	}
	s.log.Info("email sent", "from", m.Email)
	return nil
}

// headerSafe drops characters that would end a header line.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func compose(cfg SMTPConfig, m Message) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(m.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, m.Email, m.Message)

	return []byte("To: " + cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(m.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// LogMailer writes messages to the log. It stands in for SMTP in development.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) Send(_ context.Context, m Message) error {
	l.log.Info("contact message (smtp not configured)", "name", m.Name, "email", m.Email, "message", m.Message)
	return nil
}

// NewMailer picks SMTP when credentials are configured.
func NewMailer(cfg SMTPConfig, log *slog.Logger) Mailer {
	if cfg.Configured() {
		return NewSMTPMailer(cfg, log)
	}
	log.Warn("SMTP credentials not configured, contact messages will only be logged")
	return NewLogMailer(log)
}
