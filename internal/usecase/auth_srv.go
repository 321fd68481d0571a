package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/pkg/jwt"
	"arc-web/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	Logout(ctx context.Context, sessionToken uuid.UUID) error
}

type authService struct {
	repo         *repository.Repository
	verification VerificationService
	tokens       *jwt.Service
	config       *utils.Config
	log          *zap.Logger

	checkPassword func(password, hash string) bool
}

func NewAuthService(
	repo *repository.Repository,
	verification VerificationService,
	tokens *jwt.Service,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:         repo,
		verification: verification,
		tokens:       tokens,
		config:       config,
		log:          log.With(zap.String("service", "auth")),

		checkPassword: utils.CheckPasswordHash,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:         email,
		PasswordHash:  hashedPassword,
		DisplayName:   req.DisplayName,
		Role:          entity.RoleCustomer,
		EmailVerified: false,
		IsActive:      true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.log.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))

	// The account stays even if the code cannot be mailed; resend recovers it.
	code, err := s.verification.IssueEmailCode(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &response.RegisterResponse{Success: true, Email: user.Email}
	if s.config.App.ExposeDevSecrets {
		resp.DevCode = code
	}
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Error("Failed to find user for login", zap.Error(err))
		return nil, err
	}

	// Unknown addresses still pay for a bcrypt compare so timing does not reveal them.
	hash := utils.DummyPasswordHash()
	if user != nil {
		hash = user.PasswordHash
	}
	matched := s.checkPassword(req.Password, hash)
	if user == nil || !matched {
		s.log.Warn("Invalid login attempt")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountDisabled
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		UserAgent: optional(req.UserAgent),
		IPAddress: optional(req.IPAddress),
		ExpiresAt: now.Add(s.tokens.Expiry()),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	signed, err := s.tokens.GenerateToken(user.ID, string(user.Role), session.Token, now, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	account, err := s.repo.Minecraft.FindLatestByUserID(ctx, user.ID)
	if err != nil {
		s.log.Warn("Failed to load linked account", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	return &response.LoginResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
		User:      response.UserToResponse(user, account),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken uuid.UUID) error {
	if err := s.repo.Session.Revoke(ctx, sessionToken, time.Now()); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return err
	}

	s.log.Info("User logged out")
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
