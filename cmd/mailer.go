package cmd

import (
	"context"
	"fmt"

	"arc-web/pkg/mail"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

// Mailer drains the mail queue into SMTP until ctx is cancelled.
func Mailer(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	smtp, err := mail.NewSMTPSender(config.Email, logger)
	if err != nil {
		return fmt.Errorf("smtp sender: %w", err)
	}

	consumer, err := mail.NewConsumer(config.Email.AMQPURL, config.Email.Queue, smtp, logger)
	if err != nil {
		return fmt.Errorf("mail consumer: %w", err)
	}
	defer consumer.Close()

	logger.Info("Mailer worker running", zap.String("queue", config.Email.Queue))
	return consumer.Run(ctx)
}
