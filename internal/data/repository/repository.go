package repository

import (
	"context"
	"errors"

	"arc-web/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

type Repository struct {
	User      UserRepository
	Session   SessionRepository
	Token     TokenRepository
	Minecraft MinecraftAccountRepository
	Order     OrderRepository
	Cart      CartRepository

	tx Transactor
}

// Transactor runs fn against a Repository whose every member shares one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *Repository) error) error
}

// WithTx runs fn atomically. Calling it on a Repository that is already bound to a
// transaction joins that transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.tx.WithTx(ctx, fn)
}

// SetTransactor is used by alternative storage backends to plug their transaction model in.
func (r *Repository) SetTransactor(tx Transactor) {
	r.tx = tx
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.tx = &pgxTransactor{db: db, log: log}
	return repo
}

func newRepository(db database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(db, log),
		Session:   NewSessionRepository(db, log),
		Token:     NewTokenRepository(db, log),
		Minecraft: NewMinecraftAccountRepository(db, log),
		Order:     NewOrderRepository(db, log),
		Cart:      NewCartRepository(db, log),
	}
}

type pgxTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgxTransactor) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		txRepo := newRepository(tx, t.log)
		txRepo.tx = joinedTx{repo: txRepo}
		return fn(txRepo)
	})
}

// joinedTx lets nested WithTx calls reuse the enclosing transaction.
type joinedTx struct {
	repo *Repository
}

func (j joinedTx) WithTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
