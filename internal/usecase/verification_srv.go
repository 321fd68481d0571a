package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/internal/token"
	"arc-web/pkg/mail"
	"arc-web/pkg/metrics"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

type VerificationService interface {
	// IssueEmailCode supersedes the user's codes, stores a new one and mails it.
	IssueEmailCode(ctx context.Context, user *entity.User) (string, error)
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
	ResendCode(ctx context.Context, req *request.ResendCodeRequest) (*response.ResendCodeResponse, error)
	RequestPasswordReset(ctx context.Context, req *request.ResetPasswordRequest) error
	ValidateResetToken(ctx context.Context, value string) (bool, error)
	UpdatePassword(ctx context.Context, req *request.UpdatePasswordRequest) error
}

type verificationService struct {
	repo   *repository.Repository
	codes  *token.Store
	resets *token.Store
	mailer mail.Sender
	config *utils.Config
	log    *zap.Logger
}

func NewVerificationService(
	repo *repository.Repository,
	codes *token.Store,
	resets *token.Store,
	mailer mail.Sender,
	config *utils.Config,
	log *zap.Logger,
) VerificationService {
	return &verificationService{
		repo:   repo,
		codes:  codes,
		resets: resets,
		mailer: mailer,
		config: config,
		log:    log.With(zap.String("service", "verification")),
	}
}

func (s *verificationService) IssueEmailCode(ctx context.Context, user *entity.User) (string, error) {
	code, err := s.codes.Issue(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue verification code", zap.Error(err), zap.String("user_id", user.ID.String()))
		return "", err
	}

	err = s.deliver(ctx, "verification", mail.Message{
		To:      user.Email,
		Subject: "Your ARC verification code",
		Body: fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes.",
			code.Value, int(s.codes.Lifetime().Minutes())),
	})
	if err != nil {
		if s.config.Email.Strict {
			return "", fmt.Errorf("%w: %v", ErrMailDelivery, err)
		}
		s.log.Warn("Verification email not delivered", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	return code.Value, nil
}

func (s *verificationService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Error("Failed to find user for verification", zap.Error(err))
		return err
	}
	if user == nil {
		return ErrInvalidOrExpired
	}

	_, err = s.codes.ConsumeFor(ctx, user.ID, req.Code, func(tx *repository.Repository, _ *entity.Token) error {
		if err := tx.User.MarkEmailVerified(ctx, user.ID, time.Now()); err != nil {
			return err
		}
		return tx.Token.DeleteUnusedByOwner(ctx, s.codes.Kind(), user.ID)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidOrExpired) {
			s.log.Error("Failed to verify email", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
		return err
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *verificationService) ResendCode(ctx context.Context, req *request.ResendCodeRequest) (*response.ResendCodeResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Error("Failed to find user for resend", zap.Error(err))
		return nil, err
	}

	// Unknown addresses get the same answer as known ones.
	if user == nil {
		return &response.ResendCodeResponse{Success: true}, nil
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	code, err := s.IssueEmailCode(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &response.ResendCodeResponse{Success: true}
	if s.config.App.ExposeDevSecrets {
		resp.DevCode = code
	}
	return resp, nil
}

// RequestPasswordReset never reports whether the address exists. Failures past
// validation are logged only, since surfacing them would.
func (s *verificationService) RequestPasswordReset(ctx context.Context, req *request.ResetPasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err))
		return nil
	}
	if user == nil || !user.IsActive {
		s.log.Debug("Password reset requested for unknown address")
		return nil
	}

	reset, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue reset token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, reset.Value)
	err = s.deliver(ctx, "password_reset", mail.Message{
		To:      user.Email,
		Subject: "Reset your ARC password",
		Body: "Someone asked to reset the password of your ARC account.\n\n" +
			"Open this link within the hour to choose a new one:\n" + link +
			"\n\nIf this was not you, ignore this email.",
	})
	if err != nil {
		s.log.Warn("Password reset email not delivered", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	return nil
}

func (s *verificationService) ValidateResetToken(ctx context.Context, value string) (bool, error) {
	_, err := s.resets.Peek(ctx, value)
	if errors.Is(err, ErrInvalidOrExpired) {
		return false, nil
	}
	if err != nil {
		s.log.Error("Failed to check reset token", zap.Error(err))
		return false, err
	}
	return true, nil
}

func (s *verificationService) UpdatePassword(ctx context.Context, req *request.UpdatePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return err
	}

	consumed, err := s.resets.Consume(ctx, req.Token, func(tx *repository.Repository, t *entity.Token) error {
		now := time.Now()
		if err := tx.User.UpdatePassword(ctx, t.UserID, hash, now); err != nil {
			return err
		}
		if err := tx.Token.DeleteUnusedByOwner(ctx, s.resets.Kind(), t.UserID); err != nil {
			return err
		}
		return tx.Session.RevokeAllUserSessions(ctx, t.UserID, now)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidOrExpired) {
			s.log.Error("Failed to update password", zap.Error(err))
		}
		return err
	}

	s.log.Info("Password reset", zap.String("user_id", consumed.UserID.String()))
	return nil
}

func (s *verificationService) deliver(ctx context.Context, purpose string, msg mail.Message) error {
	err := s.mailer.Send(ctx, msg)
	metrics.MailTotal.WithLabelValues(purpose, metrics.Result(err)).Inc()
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
