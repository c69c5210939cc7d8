package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/routinely/tracker/internal/core/domain"
)

// SMTPSink sends each email over a fresh SMTP session.
type SMTPSink struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSink(host string, port int, username, password, from string) *SMTPSink {
	if port <= 0 {
		port = 587
	}
	return &SMTPSink{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

func (s *SMTPSink) Send(ctx context.Context, msg domain.EmailMessage) error {
	m := s.build(msg)

	// gomail has no context support; give up waiting when ctx ends.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (s *SMTPSink) build(msg domain.EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("X-Notification-Id", msg.NotificationID)
	m.SetBody("text/html", msg.HTMLBody)
	return m
}

func (s *SMTPSink) Close() error { return nil }
