package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	a access
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	return r.a.do(func(s *store) error {
		for _, u := range s.users {
			if u.DeletedAt == nil && strings.EqualFold(u.Email, user.Email) {
				return repository.ErrDuplicate
			}
		}
		s.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	var found *entity.User
	err := r.a.do(func(s *store) error {
		if u, ok := s.users[id]; ok && u.DeletedAt == nil {
			found = &u
		}
		return nil
	})
	return found, err
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var found *entity.User
	err := r.a.do(func(s *store) error {
		for _, u := range s.users {
			if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
				found = &u
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *userRepository) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(u *entity.User) {
		u.EmailVerified = true
		u.UpdatedAt = at
	})
}

func (r *userRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, at time.Time) error {
	return r.update(id, func(u *entity.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	})
}

func (r *userRepository) update(id uuid.UUID, mutate func(u *entity.User)) error {
	return r.a.do(func(s *store) error {
		u, ok := s.users[id]
		if !ok || u.DeletedAt != nil {
			return fmt.Errorf("user %s not found", id.String())
		}
		mutate(&u)
		s.users[id] = u
		return nil
	})
}

type sessionRepository struct {
	a access
}

func (r *sessionRepository) Create(_ context.Context, session *entity.Session) error {
	return r.a.do(func(s *store) error {
		s.sessions[session.Token] = *session
		return nil
	})
}

func (r *sessionRepository) FindValidSession(_ context.Context, token uuid.UUID, now time.Time) (*entity.Session, error) {
	var found *entity.Session
	err := r.a.do(func(s *store) error {
		if sess, ok := s.sessions[token]; ok && sess.RevokedAt == nil && sess.ExpiresAt.After(now) {
			found = &sess
		}
		return nil
	})
	return found, err
}

func (r *sessionRepository) Revoke(_ context.Context, token uuid.UUID, at time.Time) error {
	return r.a.do(func(s *store) error {
		sess, ok := s.sessions[token]
		if !ok || sess.RevokedAt != nil {
			return fmt.Errorf("session not found or already revoked")
		}
		sess.RevokedAt = &at
		s.sessions[token] = sess
		return nil
	})
}

func (r *sessionRepository) RevokeAllUserSessions(_ context.Context, userID uuid.UUID, at time.Time) error {
	return r.a.do(func(s *store) error {
		for token, sess := range s.sessions {
			if sess.UserID == userID && sess.RevokedAt == nil {
				sess.RevokedAt = &at
				s.sessions[token] = sess
			}
		}
		return nil
	})
}

func (r *sessionRepository) CleanExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.a.do(func(s *store) error {
		for token, sess := range s.sessions {
			if sess.ExpiresAt.Before(before) || (sess.RevokedAt != nil && sess.RevokedAt.Before(before)) {
				delete(s.sessions, token)
				n++
			}
		}
		return nil
	})
	return n, err
}
