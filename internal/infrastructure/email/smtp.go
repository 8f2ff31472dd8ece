package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/examforge/examforge/internal/shared/config"
	"github.com/examforge/examforge/internal/shared/logger"
)

// Message is one rendered email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	HTMLBody  string
	PlainBody string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPEmailService struct {
	config config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(cfg config.EmailConfig) *SMTPEmailService {
	return &SMTPEmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// Send dials per message. gomail has no context support, so ctx is only
// checked before dialing.
func (s *SMTPEmailService) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	if msg.ToName != "" {
		m.SetHeader("To", m.FormatAddress(msg.To, msg.ToName))
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender stands in for SMTP when email is disabled.
type LogSender struct {
	logger logger.Interface
}

func NewLogSender(logger logger.Interface) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Infow("email delivery disabled, message dropped",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// NewSender picks SMTP or logging based on cfg.Enabled.
func NewSender(cfg config.EmailConfig, logger logger.Interface) Sender {
	if !cfg.Enabled {
		return NewLogSender(logger)
	}
	return NewSMTPEmailService(cfg)
}
