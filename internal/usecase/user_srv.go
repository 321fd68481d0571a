package usecase

import (
	"context"

	"arc-web/internal/data/repository"
	"arc-web/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	account, err := us.repo.Minecraft.FindLatestByUserID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to load linked account", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	resp := response.UserToResponse(user, account)
	return &resp, nil
}
