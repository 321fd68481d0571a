package mail

import (
	"context"
	"fmt"
	"time"

	"arc-web/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type SMTPSender struct {
	client   *mail.Client
	from     string
	fromName string
	log      *zap.Logger
}

func NewSMTPSender(cfg utils.EmailConfig, log *zap.Logger) (*SMTPSender, error) {
	log = log.With(zap.String("mail", TransportSMTP))

	if cfg.From == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		log.Error("Failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
		)
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	log.Info("Mail client ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
	)

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		log:      log,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		s.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.Duration("attempt_duration", time.Since(start)),
		)
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	s.log.Info("Email sent",
		zap.String("to", msg.To),
		zap.Duration("send_duration", time.Since(start)),
	)
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	var err error
	if s.fromName != "" {
		err = m.FromFormat(s.fromName, s.from)
	} else {
		err = m.From(s.from)
	}
	if err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("set recipient %s: %w", msg.To, err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return m, nil
}
