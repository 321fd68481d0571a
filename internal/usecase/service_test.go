package usecase

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"arc-web/internal/catalog"
	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/data/repository/memory"
	"arc-web/internal/dto/request"
	"arc-web/pkg/jwt"
	"arc-web/pkg/mail"
	"arc-web/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "Passw0rd1"

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	mailer *recordingMailer
	tokens *jwt.Service
	config *utils.Config
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	log := zap.NewNop()
	config := &utils.Config{
		App: utils.AppConfig{
			BaseURL:          "https://shop.example.com",
			ExposeDevSecrets: true,
		},
		JWT: utils.JWTConfig{
			Secret:      "test-secret-test-secret-test-secret",
			Issuer:      "arc-web",
			ExpiryHours: 1,
		},
		Email: utils.EmailConfig{Strict: strict},
	}

	products, err := catalog.New([]entity.Product{
		{ID: "vip", Name: "VIP Rank", Type: entity.ProductTypeSubscription, Price: 500},
		{ID: "mvp", Name: "MVP Rank", Type: entity.ProductTypeSubscription, Price: 900},
		{ID: "vote-key", Name: "Vote Crate Key", Type: entity.ProductTypeKey, Price: 50},
		{ID: "rare-key", Name: "Rare Crate Key", Type: entity.ProductTypeKey, Price: 150},
		{ID: "legendary-key", Name: "Legendary Crate Key", Type: entity.ProductTypeKey, Price: 400},
		{ID: "seasonal-key", Name: "Seasonal Crate Key", Type: entity.ProductTypeKey, Price: 250},
		{ID: "pet-key", Name: "Pet Crate Key", Type: entity.ProductTypeKey, Price: 200},
	})
	require.NoError(t, err)

	repo := memory.NewRepository(log)
	mailer := &recordingMailer{}
	tokens := jwt.NewService(config.JWT, log)

	return &fixture{
		svc:    NewService(repo, products, mailer, tokens, config, log),
		repo:   repo,
		mailer: mailer,
		tokens: tokens,
		config: config,
	}
}

// register creates an account and returns its id and the mailed code.
func (f *fixture) register(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()

	resp, err := f.svc.Auth.Register(ctx, &request.RegisterRequest{Email: email, Password: testPassword})
	require.NoError(t, err)

	user, err := f.repo.User.FindByEmail(ctx, resp.Email)
	require.NoError(t, err)
	require.NotNil(t, user)

	return user.ID, resp.DevCode
}

// verifiedUser registers, verifies and logs in, returning the user id and the bearer token.
func (f *fixture) verifiedUser(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()

	id, code := f.register(t, email)
	require.NoError(t, f.svc.Verification.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: email, Code: code}))

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: email, Password: testPassword})
	require.NoError(t, err)

	return id, login.Token
}

func (f *fixture) sessionToken(t *testing.T, bearer string) uuid.UUID {
	t.Helper()
	claims, err := f.tokens.ValidateToken(bearer)
	require.NoError(t, err)
	token, err := claims.SessionToken()
	require.NoError(t, err)
	return token
}

func (f *fixture) sessionValid(t *testing.T, bearer string) bool {
	t.Helper()
	session, err := f.repo.Session.FindValidSession(context.Background(), f.sessionToken(t, bearer), time.Now())
	require.NoError(t, err)
	return session != nil
}

var resetLink = regexp.MustCompile(`reset-password\?token=([0-9a-f]{64})`)

func resetTokenFrom(t *testing.T, msg mail.Message) string {
	t.Helper()
	m := resetLink.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "no reset link in %q", msg.Body)
	return m[1]
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}
