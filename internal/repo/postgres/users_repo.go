package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showcasehq/showcase/internal/domain/user"
	"github.com/showcasehq/showcase/internal/observability"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByUID(ctx context.Context, uid string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_uid", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, firebase_uid, name, email, created_at
			 FROM users
			 WHERE firebase_uid = $1`,
			uid,
		).Scan(&u.ID, &u.FirebaseUID, &u.Name, &u.Email, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	u := user.User{
		ID:          uuid.NewString(),
		FirebaseUID: req.FirebaseUID,
		Name:        req.Name,
		Email:       req.Email,
		CreatedAt:   time.Now().UTC(),
	}

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users(id, firebase_uid, name, email, created_at) VALUES($1,$2,$3,$4,$5)`,
			u.ID, u.FirebaseUID, u.Name, u.Email, u.CreatedAt)

		return execErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrDuplicate
		}

		return user.User{}, err
	}

	return u, nil
}
