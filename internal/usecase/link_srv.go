package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/internal/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReasonInvalidOrExpired is reported to the plugin for any unusable link code.
const ReasonInvalidOrExpired = "invalid_or_expired"

type LinkService interface {
	GenerateCode(ctx context.Context, userID uuid.UUID) (*response.LinkCodeResponse, error)
	// ValidateCode redeems a code typed in-game and binds the player to the code's owner.
	ValidateCode(ctx context.Context, req *request.ValidateLinkRequest) (*response.LinkValidateResponse, error)
	Status(ctx context.Context, userID uuid.UUID) (*response.LinkStatusResponse, error)
}

type linkService struct {
	repo  *repository.Repository
	codes *token.Store
	log   *zap.Logger
}

func NewLinkService(repo *repository.Repository, codes *token.Store, log *zap.Logger) LinkService {
	return &linkService{
		repo:  repo,
		codes: codes,
		log:   log.With(zap.String("service", "link")),
	}
}

func (s *linkService) GenerateCode(ctx context.Context, userID uuid.UUID) (*response.LinkCodeResponse, error) {
	code, err := s.codes.Issue(ctx, userID)
	if err != nil {
		s.log.Error("Failed to issue link code", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	return &response.LinkCodeResponse{
		Code:      code.Value,
		ExpiresAt: code.ExpiresAt,
	}, nil
}

func (s *linkService) ValidateCode(ctx context.Context, req *request.ValidateLinkRequest) (*response.LinkValidateResponse, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.AuthUUID = strings.TrimSpace(req.AuthUUID)
	req.Username = strings.TrimSpace(req.Username)

	if err := validate(req); err != nil {
		return nil, err
	}

	consumed, err := s.codes.Consume(ctx, req.Code, func(tx *repository.Repository, t *entity.Token) error {
		return tx.Minecraft.Upsert(ctx, &entity.MinecraftAccount{
			AuthUUID: req.AuthUUID,
			Username: req.Username,
			UserID:   t.UserID,
			LinkedAt: time.Now(),
		})
	})
	if errors.Is(err, ErrInvalidOrExpired) {
		return &response.LinkValidateResponse{Success: false, Reason: ReasonInvalidOrExpired}, nil
	}
	if err != nil {
		s.log.Error("Failed to redeem link code", zap.Error(err), zap.String("auth_uuid", req.AuthUUID))
		return nil, err
	}

	s.log.Info("Minecraft account linked",
		zap.String("user_id", consumed.UserID.String()),
		zap.String("auth_uuid", req.AuthUUID),
		zap.String("username", req.Username),
	)

	return &response.LinkValidateResponse{Success: true}, nil
}

func (s *linkService) Status(ctx context.Context, userID uuid.UUID) (*response.LinkStatusResponse, error) {
	account, err := s.repo.Minecraft.FindLatestByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load linked account", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}
	if account == nil {
		return &response.LinkStatusResponse{Linked: false}, nil
	}

	linkedAt := account.LinkedAt
	return &response.LinkStatusResponse{
		Linked:   true,
		AuthUUID: account.AuthUUID,
		Username: account.Username,
		LinkedAt: &linkedAt,
	}, nil
}
