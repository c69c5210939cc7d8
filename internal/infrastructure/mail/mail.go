// Package mail provides the delivery sinks behind the email dispatcher.
package mail

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

const (
	TransportLog   = "log"
	TransportSMTP  = "smtp"
	TransportKafka = "kafka"
)

// Config selects and configures the email transport.
type Config struct {
	Transport    string
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	KafkaBrokers []string
	KafkaTopic   string
}

// Sink is a MailSink that may hold a connection to release on shutdown.
type Sink interface {
	ports.MailSink
	io.Closer
}

// New builds the sink named by cfg.Transport.
func New(cfg Config, log zerolog.Logger) (Sink, error) {
	switch strings.ToLower(cfg.Transport) {
	case TransportLog, "":
		return NewLogSink(log), nil
	case TransportSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp transport requires SMTP_HOST")
		}
		return NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From), nil
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			return nil, fmt.Errorf("kafka transport requires KAFKA_BROKERS and KAFKA_TOPIC")
		}
		return NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.From), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// LogSink writes emails to the log instead of sending them. It is the
// default for development.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, msg domain.EmailMessage) error {
	s.log.Info().
		Str("notification_id", msg.NotificationID).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email")
	return nil
}

func (s *LogSink) Close() error { return nil }
