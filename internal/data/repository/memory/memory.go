// Package memory is a process-local storage backend with the same transactional
// behaviour as the PostgreSQL repositories. It backs DB_DRIVER=memory and the tests.
package memory

import (
	"context"
	"sync"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type store struct {
	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session // keyed by session token
	tokens   map[uuid.UUID]entity.Token
	accounts map[string]entity.MinecraftAccount
	orders   map[uuid.UUID]entity.Order
	items    map[uuid.UUID][]entity.OrderItem // keyed by order id
	carts    map[uuid.UUID][]entity.CartItem
}

func newStore() *store {
	return &store{
		users:    map[uuid.UUID]entity.User{},
		sessions: map[uuid.UUID]entity.Session{},
		tokens:   map[uuid.UUID]entity.Token{},
		accounts: map[string]entity.MinecraftAccount{},
		orders:   map[uuid.UUID]entity.Order{},
		items:    map[uuid.UUID][]entity.OrderItem{},
		carts:    map[uuid.UUID][]entity.CartItem{},
	}
}

func (s *store) clone() *store {
	c := newStore()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.OrderItem(nil), v...)
	}
	for k, v := range s.carts {
		c.carts[k] = append([]entity.CartItem(nil), v...)
	}
	return c
}

// access hands a repository the store it should operate on.
type access interface {
	do(fn func(s *store) error) error
}

type backend struct {
	mu   sync.Mutex
	data *store
	log  *zap.Logger
}

func (b *backend) do(fn func(s *store) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.data)
}

// WithTx serializes transactions on the backend lock and runs fn against a copy of
// the data, which replaces the live data only when fn succeeds.
func (b *backend) WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := b.data.clone()
	txRepo := build(txAccess{data: working})
	txRepo.SetTransactor(joined{repo: txRepo})

	if err := fn(txRepo); err != nil {
		b.log.Debug("Transaction rolled back", zap.Error(err))
		return err
	}

	b.data = working
	return nil
}

// txAccess is used while the backend lock is already held by WithTx.
type txAccess struct {
	data *store
}

func (t txAccess) do(fn func(s *store) error) error {
	return fn(t.data)
}

type joined struct {
	repo *repository.Repository
}

func (j joined) WithTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(j.repo)
}

// NewRepository returns an empty in-memory Repository.
func NewRepository(log *zap.Logger) *repository.Repository {
	b := &backend{
		data: newStore(),
		log:  log.With(zap.String("repository", "memory")),
	}
	repo := build(b)
	repo.SetTransactor(b)
	return repo
}

func build(a access) *repository.Repository {
	return &repository.Repository{
		User:      &userRepository{a: a},
		Session:   &sessionRepository{a: a},
		Token:     &tokenRepository{a: a},
		Minecraft: &minecraftAccountRepository{a: a},
		Order:     &orderRepository{a: a},
		Cart:      &cartRepository{a: a},
	}
}
