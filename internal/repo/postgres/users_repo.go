package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeswanth1218/flutter-api/internal/domain/category"
	"github.com/yeswanth1218/flutter-api/internal/domain/user"
	"github.com/yeswanth1218/flutter-api/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// CreateWithDefaults inserts the account row and its starter categories
// in one transaction. Nothing lands if any insert fails.
func (repo *UsersRepo) CreateWithDefaults(ctx context.Context, u user.User, defaults []category.Category) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("users.create.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO users (id, user_name, phone, password_hash, email, account_tier, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, u.ID, u.UserName, u.Phone, u.PasswordHash, u.Email, u.AccountTier, u.Status, u.CreatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_phone_key" {
			err = user.ErrPhoneTaken
		}

		return
	}

	for _, c := range defaults {
		err = repo.observe("users.create.seed_category", func() error {
			_, e := tx.Exec(ctx, `
				INSERT INTO categories (id, user_id, name, status, created_at)
				VALUES ($1,$2,$3,$4,$5)
			`, c.ID, c.UserID, c.Name, c.Status, c.CreatedAt)
			return e
		})

		if err != nil {
			return
		}
	}

	err = tx.Commit(ctx)
	return
}

func (repo *UsersRepo) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	var u user.User

	err := repo.observe("users.get_by_phone", func() error {
		return repo.pool.QueryRow(
			ctx,
			`SELECT id, user_name, phone, password_hash, email, account_tier, status, created_at
			 FROM users
			 WHERE phone = $1`,
			phone,
		).Scan(
			&u.ID,
			&u.UserName,
			&u.Phone,
			&u.PasswordHash,
			&u.Email,
			&u.AccountTier,
			&u.Status,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (repo *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := repo.observe("users.get_by_id", func() error {
		return repo.pool.QueryRow(
			ctx,
			`SELECT id, user_name, phone, password_hash, email, account_tier, status, created_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.UserName,
			&u.Phone,
			&u.PasswordHash,
			&u.Email,
			&u.AccountTier,
			&u.Status,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Exists is the cheap ownership check the card endpoints run first.
func (repo *UsersRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := repo.observe("users.exists", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users WHERE id = $1
		)`, id).Scan(&exists)
	})

	return exists, err
}
