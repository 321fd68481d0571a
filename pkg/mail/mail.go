// Package mail delivers transactional email through SMTP, a RabbitMQ queue
// drained by the mailer worker, or the log in development.
package mail

import (
	"context"
	"fmt"
	"io"

	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

const (
	TransportSMTP = "smtp"
	TransportAMQP = "amqp"
	TransportLog  = "log"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender hands a message to a transport. An error means the transport refused it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewSender builds the Sender selected by cfg.Transport. The returned closer
// releases transport resources on shutdown.
func NewSender(cfg utils.EmailConfig, log *zap.Logger) (Sender, io.Closer, error) {
	switch cfg.Transport {
	case TransportSMTP, "":
		sender, err := NewSMTPSender(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return sender, nopCloser{}, nil
	case TransportAMQP:
		sender, err := NewQueueSender(cfg.AMQPURL, cfg.Queue, log)
		if err != nil {
			return nil, nil, err
		}
		return sender, sender, nil
	case TransportLog:
		return NewLogSender(log), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("mail", TransportLog))}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("Email (not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
