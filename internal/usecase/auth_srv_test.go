package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/dto/request"
	"arc-web/internal/token"
	"arc-web/pkg/utils"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLogin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.Auth.Register(ctx, &request.RegisterRequest{
		Email:    "Steve@Example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "steve@example.com", resp.Email)
	assert.Regexp(t, `^[0-9]{6}$`, resp.DevCode)

	msg := f.mailer.last(t)
	assert.Equal(t, "steve@example.com", msg.To)
	assert.Contains(t, msg.Body, resp.DevCode)
	assert.Contains(t, msg.Body, "15 minutes")

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "steve@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	err = f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "STEVE@example.com", Code: resp.DevCode})
	require.NoError(t, err)

	err = f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "steve@example.com", Code: resp.DevCode})
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{
		Email:     "steve@example.com",
		Password:  testPassword,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "steve@example.com", login.User.Email)
	assert.True(t, login.User.IsVerified)
	assert.Nil(t, login.User.Minecraft)
	assert.True(t, f.sessionValid(t, login.Token))

	require.NoError(t, f.svc.Auth.Logout(ctx, f.sessionToken(t, login.Token)))
	assert.False(t, f.sessionValid(t, login.Token))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t, false)
	f.register(t, "alex@example.com")

	_, err := f.svc.Auth.Register(context.Background(), &request.RegisterRequest{
		Email:    "ALEX@example.com",
		Password: testPassword,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Auth.Register(context.Background(), &request.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	require.ErrorIs(t, err, ErrValidation)

	fields := validationFields(t, err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Zero(t, f.mailer.count())
}

func TestRegisterMailFailure(t *testing.T) {
	t.Run("strict surfaces the failure and keeps the account", func(t *testing.T) {
		f := newFixture(t, true)
		f.mailer.err = errors.New("smtp down")

		_, err := f.svc.Auth.Register(context.Background(), &request.RegisterRequest{
			Email:    "alex@example.com",
			Password: testPassword,
		})
		assert.ErrorIs(t, err, ErrMailDelivery)

		user, err := f.repo.User.FindByEmail(context.Background(), "alex@example.com")
		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("lenient logs and succeeds", func(t *testing.T) {
		f := newFixture(t, false)
		f.mailer.err = errors.New("smtp down")

		resp, err := f.svc.Auth.Register(context.Background(), &request.RegisterRequest{
			Email:    "alex@example.com",
			Password: testPassword,
		})
		require.NoError(t, err)
		assert.Len(t, resp.DevCode, 6)
	})
}

func TestRegisterHidesDevCodeByDefault(t *testing.T) {
	f := newFixture(t, false)
	f.config.App.ExposeDevSecrets = false

	resp, err := f.svc.Auth.Register(context.Background(), &request.RegisterRequest{
		Email:    "alex@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.DevCode)
	assert.Equal(t, 1, f.mailer.count())
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.verifiedUser(t, "alex@example.com")

	_, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "alex@example.com", Password: "Wr0ngpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, f.repo.User.Create(ctx, &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Email:         "banned@example.com",
		PasswordHash:  hash,
		Role:          entity.RoleCustomer,
		EmailVerified: true,
		IsActive:      false,
	}))

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "banned@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginUnknownEmailStillComparesHash(t *testing.T) {
	f := newFixture(t, false)
	auth := f.svc.Auth.(*authService)

	var hashes []string
	auth.checkPassword = func(password, hash string) bool {
		hashes = append(hashes, hash)
		return utils.CheckPasswordHash(password, hash)
	}

	_, err := f.svc.Auth.Login(context.Background(), &request.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 1)
	assert.Equal(t, utils.DummyPasswordHash(), hashes[0])
}

func TestResendCode(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	t.Run("unknown address looks like success", func(t *testing.T) {
		resp, err := f.svc.Verification.ResendCode(ctx, &request.ResendCodeRequest{Email: "ghost@example.com"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.DevCode)
		assert.Zero(t, f.mailer.count())
	})

	t.Run("new code supersedes the old one", func(t *testing.T) {
		_, first := f.register(t, "alex@example.com")

		resp, err := f.svc.Verification.ResendCode(ctx, &request.ResendCodeRequest{Email: "alex@example.com"})
		require.NoError(t, err)
		require.Len(t, resp.DevCode, 6)

		if first != resp.DevCode {
			err = f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: first})
			assert.ErrorIs(t, err, ErrInvalidOrExpired)
		}

		err = f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: resp.DevCode})
		require.NoError(t, err)
	})

	t.Run("verified address is rejected", func(t *testing.T) {
		_, err := f.svc.Verification.ResendCode(ctx, &request.ResendCodeRequest{Email: "alex@example.com"})
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestVerifyEmailUnknownAddress(t *testing.T) {
	f := newFixture(t, false)

	err := f.svc.Verification.VerifyEmail(context.Background(), &request.VerifyEmailRequest{
		Email: "ghost@example.com",
		Code:  "123456",
	})
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestVerifyEmailRejectsAnotherUsersCode(t *testing.T) {
	f := newFixture(t, false)
	_, code := f.register(t, "alex@example.com")
	f.register(t, "steve@example.com")

	err := f.svc.Verification.VerifyEmail(context.Background(), &request.VerifyEmailRequest{
		Email: "steve@example.com",
		Code:  code,
	})
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, bearer := f.verifiedUser(t, "alex@example.com")
	sentBefore := f.mailer.count()

	require.NoError(t, f.svc.Verification.RequestPasswordReset(ctx, &request.ResetPasswordRequest{Email: "alex@example.com"}))
	require.Equal(t, sentBefore+1, f.mailer.count())

	msg := f.mailer.last(t)
	assert.Contains(t, msg.Body, "https://shop.example.com/reset-password?token=")
	token := resetTokenFrom(t, msg)

	ok, err := f.svc.Verification.ValidateResetToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	err = f.svc.Verification.UpdatePassword(ctx, &request.UpdatePasswordRequest{Token: token, Password: "N3wPassword"})
	require.NoError(t, err)

	ok, err = f.svc.Verification.ValidateResetToken(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.svc.Verification.UpdatePassword(ctx, &request.UpdatePasswordRequest{Token: token, Password: "An0therPass"})
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	assert.False(t, f.sessionValid(t, bearer), "reset revokes existing sessions")

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "alex@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "alex@example.com", Password: "N3wPassword"})
	assert.NoError(t, err)
}

func TestPasswordResetUnknownAddress(t *testing.T) {
	f := newFixture(t, true)

	err := f.svc.Verification.RequestPasswordReset(context.Background(), &request.ResetPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Zero(t, f.mailer.count())

	ok, err := f.svc.Verification.ValidateResetToken(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordResetMailFailureIsHidden(t *testing.T) {
	f := newFixture(t, true)
	f.verifiedUser(t, "alex@example.com")
	f.mailer.err = errors.New("smtp down")

	err := f.svc.Verification.RequestPasswordReset(context.Background(), &request.ResetPasswordRequest{Email: "alex@example.com"})
	assert.NoError(t, err)
}

// otherCode returns a well-formed code that differs from code.
func otherCode(t *testing.T, code string) string {
	t.Helper()
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	return fmt.Sprintf("%06d", (n+1)%1000000)
}

func TestVerifyEmailAttemptLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("code survives a few misses", func(t *testing.T) {
		f := newFixture(t, false)
		_, code := f.register(t, "alex@example.com")

		for i := 0; i < token.MaxVerificationAttempts-1; i++ {
			err := f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: otherCode(t, code)})
			require.ErrorIs(t, err, ErrInvalidOrExpired)
		}

		assert.NoError(t, f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: code}))
	})

	t.Run("code is burned once the budget is spent", func(t *testing.T) {
		f := newFixture(t, false)
		_, code := f.register(t, "alex@example.com")

		for i := 0; i < token.MaxVerificationAttempts; i++ {
			err := f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: otherCode(t, code)})
			require.ErrorIs(t, err, ErrInvalidOrExpired)
		}

		err := f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: code})
		assert.ErrorIs(t, err, ErrInvalidOrExpired)

		// A resend starts a fresh budget.
		resp, err := f.svc.Verification.ResendCode(ctx, &request.ResendCodeRequest{Email: "alex@example.com"})
		require.NoError(t, err)
		assert.NoError(t, f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alex@example.com", Code: resp.DevCode}))
	})
}
