package token

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/data/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, policy Policy) (*Store, *fakeClock, *repository.Repository) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	repo := memory.NewRepository(zap.NewNop())
	return NewStore(repo, policy, zap.NewNop(), WithClock(clock.Now)), clock, repo
}

func allPolicies() map[string]Policy {
	return map[string]Policy{
		"email verification": EmailVerification(0),
		"password reset":     PasswordReset(0),
		"link code":          LinkCode(0),
	}
}

func consume(ctx context.Context, s *Store, token *entity.Token) error {
	if s.Kind() == entity.TokenKindEmailVerification {
		_, err := s.ConsumeFor(ctx, token.UserID, token.Value, nil)
		return err
	}
	_, err := s.Consume(ctx, token.Value, nil)
	return err
}

func TestStore_SingleUse(t *testing.T) {
	ctx := context.Background()

	for name, policy := range allPolicies() {
		t.Run(name, func(t *testing.T) {
			store, _, _ := newTestStore(t, policy)

			token, err := store.Issue(ctx, uuid.New())
			require.NoError(t, err)

			require.NoError(t, consume(ctx, store, token))
			assert.ErrorIs(t, consume(ctx, store, token), ErrInvalidOrExpired)
		})
	}
}

func TestStore_Supersession(t *testing.T) {
	ctx := context.Background()

	for name, policy := range allPolicies() {
		t.Run(name, func(t *testing.T) {
			store, _, _ := newTestStore(t, policy)
			owner := uuid.New()

			first, err := store.Issue(ctx, owner)
			require.NoError(t, err)
			second, err := store.Issue(ctx, owner)
			require.NoError(t, err)

			if first.Value != second.Value {
				assert.ErrorIs(t, consume(ctx, store, first), ErrInvalidOrExpired)
			}
			assert.NoError(t, consume(ctx, store, second))
		})
	}
}

func TestStore_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()

	for name, policy := range allPolicies() {
		t.Run(name+" just before expiry", func(t *testing.T) {
			store, clock, _ := newTestStore(t, policy)

			token, err := store.Issue(ctx, uuid.New())
			require.NoError(t, err)

			clock.Advance(policy.Lifetime - time.Millisecond)
			assert.NoError(t, consume(ctx, store, token))
		})

		t.Run(name+" just after expiry", func(t *testing.T) {
			store, clock, _ := newTestStore(t, policy)

			token, err := store.Issue(ctx, uuid.New())
			require.NoError(t, err)

			clock.Advance(policy.Lifetime + time.Millisecond)
			assert.ErrorIs(t, consume(ctx, store, token), ErrInvalidOrExpired)
		})
	}
}

func TestStore_Lifetimes(t *testing.T) {
	assert.Equal(t, 15*time.Minute, EmailVerification(0).Lifetime)
	assert.Equal(t, time.Hour, PasswordReset(0).Lifetime)
	assert.Equal(t, 10*time.Minute, LinkCode(0).Lifetime)
	assert.Equal(t, 5*time.Minute, LinkCode(5*time.Minute).Lifetime)
}

func TestStore_Formats(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		policy  Policy
		pattern string
	}{
		{EmailVerification(0), `^[0-9]{6}$`},
		{PasswordReset(0), `^[0-9a-f]{64}$`},
		{LinkCode(0), `^[0-9A-F]{6}$`},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy.Kind), func(t *testing.T) {
			store, _, _ := newTestStore(t, tt.policy)
			for i := 0; i < 20; i++ {
				token, err := store.Issue(ctx, uuid.New())
				require.NoError(t, err)
				assert.Regexp(t, tt.pattern, token.Value)
			}
		})
	}
}

func TestStore_LinkCodeNormalization(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, LinkCode(0))
	owner := uuid.New()

	token, err := store.Issue(ctx, owner)
	require.NoError(t, err)

	t.Run("wrong value with valid format fails", func(t *testing.T) {
		wrong := "000000"
		if token.Value == wrong {
			wrong = "FFFFFF"
		}
		_, err := store.Consume(ctx, wrong, nil)
		assert.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("lowercase with padding is accepted", func(t *testing.T) {
		got, err := store.Consume(ctx, "  "+strings.ToLower(token.Value)+" ", nil)
		require.NoError(t, err)
		assert.Equal(t, owner, got.UserID)
		assert.NotNil(t, got.UsedAt)
	})
}

func TestStore_ConsumeForChecksOwner(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, EmailVerification(0))
	owner := uuid.New()

	token, err := store.Issue(ctx, owner)
	require.NoError(t, err)

	_, err = store.ConsumeFor(ctx, uuid.New(), token.Value, nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	_, err = store.ConsumeFor(ctx, uuid.Nil, token.Value, nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	_, err = store.ConsumeFor(ctx, owner, token.Value, nil)
	assert.NoError(t, err)
}

func TestStore_EffectFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, LinkCode(0))

	token, err := store.Issue(ctx, uuid.New())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Consume(ctx, token.Value, func(tx *repository.Repository, _ *entity.Token) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	var seen *entity.Token
	_, err = store.Consume(ctx, token.Value, func(tx *repository.Repository, tok *entity.Token) error {
		seen = tok
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, token.ID, seen.ID)
}

func TestStore_Peek(t *testing.T) {
	ctx := context.Background()
	store, clock, _ := newTestStore(t, PasswordReset(0))

	token, err := store.Issue(ctx, uuid.New())
	require.NoError(t, err)

	_, err = store.Peek(ctx, token.Value)
	require.NoError(t, err)
	_, err = store.Peek(ctx, token.Value)
	require.NoError(t, err, "peek must not consume")

	_, err = store.Peek(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	clock.Advance(2 * time.Hour)
	_, err = store.Peek(ctx, token.Value)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestStore_InvalidateAllFor(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, PasswordReset(0))
	owner := uuid.New()

	token, err := store.Issue(ctx, owner)
	require.NoError(t, err)

	require.NoError(t, store.InvalidateAllFor(ctx, owner))
	_, err = store.Consume(ctx, token.Value, nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestStore_IssueRetriesCollisions(t *testing.T) {
	ctx := context.Background()

	t.Run("regenerates after a collision", func(t *testing.T) {
		values := []string{"ABCDEF", "ABCDEF", "123456"}
		policy := LinkCode(0)
		policy.Generate = func() (string, error) {
			v := values[0]
			values = values[1:]
			return v, nil
		}
		store, _, _ := newTestStore(t, policy)

		first, err := store.Issue(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "ABCDEF", first.Value)

		second, err := store.Issue(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "123456", second.Value)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		policy := LinkCode(0)
		policy.Generate = func() (string, error) { return "ABCDEF", nil }
		store, _, _ := newTestStore(t, policy)

		_, err := store.Issue(ctx, uuid.New())
		require.NoError(t, err)

		_, err = store.Issue(ctx, uuid.New())
		assert.Error(t, err)
	})
}

func TestStore_ConcurrentConsumeHasOneWinner(t *testing.T) {
	ctx := context.Background()

	for name, policy := range allPolicies() {
		t.Run(name, func(t *testing.T) {
			store, _, _ := newTestStore(t, policy)

			token, err := store.Issue(ctx, uuid.New())
			require.NoError(t, err)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				wins    int
				invalid int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := consume(ctx, store, token)

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins++
					case errors.Is(err, ErrInvalidOrExpired):
						invalid++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, wins)
			assert.Equal(t, 19, invalid)
		})
	}
}

func TestStore_ConcurrentIssueLeavesOneLiveToken(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, LinkCode(0))
	owner := uuid.New()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued []*entity.Token
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := store.Issue(ctx, owner)
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			issued = append(issued, token)
		}()
	}
	wg.Wait()

	live := 0
	for _, token := range issued {
		if token == nil {
			continue
		}
		if _, err := store.Peek(ctx, token.Value); err == nil {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestStore_MissesBurnOwnerToken(t *testing.T) {
	ctx := context.Background()

	t.Run("limited policy", func(t *testing.T) {
		store, _, _ := newTestStore(t, EmailVerification(0))
		owner := uuid.New()

		token, err := store.Issue(ctx, owner)
		require.NoError(t, err)

		wrong := "000000"
		if token.Value == wrong {
			wrong = "111111"
		}
		for i := 0; i < MaxVerificationAttempts; i++ {
			_, err := store.ConsumeFor(ctx, owner, wrong, nil)
			require.ErrorIs(t, err, ErrInvalidOrExpired)
		}

		_, err = store.ConsumeFor(ctx, owner, token.Value, nil)
		assert.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("other owners are untouched", func(t *testing.T) {
		store, _, _ := newTestStore(t, EmailVerification(0))
		owner, other := uuid.New(), uuid.New()

		token, err := store.Issue(ctx, owner)
		require.NoError(t, err)
		otherToken, err := store.Issue(ctx, other)
		require.NoError(t, err)

		for i := 0; i < MaxVerificationAttempts; i++ {
			_, err := store.ConsumeFor(ctx, other, token.Value+"x", nil)
			require.ErrorIs(t, err, ErrInvalidOrExpired)
		}

		_, err = store.ConsumeFor(ctx, owner, token.Value, nil)
		assert.NoError(t, err)
		_, err = store.ConsumeFor(ctx, other, otherToken.Value, nil)
		assert.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("unlimited policy", func(t *testing.T) {
		policy := EmailVerification(0)
		policy.MaxAttempts = 0
		store, _, _ := newTestStore(t, policy)
		owner := uuid.New()

		token, err := store.Issue(ctx, owner)
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			_, _ = store.ConsumeFor(ctx, owner, token.Value+"x", nil)
		}

		_, err = store.ConsumeFor(ctx, owner, token.Value, nil)
		assert.NoError(t, err)
	})
}
