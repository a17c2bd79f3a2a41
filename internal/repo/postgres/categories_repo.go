package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeswanth1218/flutter-api/internal/domain/category"
	"github.com/yeswanth1218/flutter-api/internal/observability"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *CategoriesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Add inserts the category unless the user already has one with that
// name. The existing row wins, reported through created=false.
func (repo *CategoriesRepo) Add(ctx context.Context, cat category.Category) (out category.Category, created bool, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existing category.Category

	err = repo.observe("categories.add.lookup", func() error {
		return tx.QueryRow(ctx, `
			SELECT id, user_id, name, status, created_at
			FROM categories
			WHERE user_id = $1 AND name = $2
		`, cat.UserID, cat.Name).Scan(
			&existing.ID,
			&existing.UserID,
			&existing.Name,
			&existing.Status,
			&existing.CreatedAt,
		)
	})

	if err == nil {
		out = existing

		return
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return
	}

	err = repo.observe("categories.add.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO categories (id, user_id, name, status, created_at)
			VALUES ($1,$2,$3,$4,$5)
		`, cat.ID, cat.UserID, cat.Name, cat.Status, cat.CreatedAt)
		return e
	})

	if err != nil {
		// lost a race on the unique pair, fetch the winner off the pool
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = repo.observe("categories.add.refetch", func() error {
				return repo.pool.QueryRow(ctx, `
					SELECT id, user_id, name, status, created_at
					FROM categories
					WHERE user_id = $1 AND name = $2
				`, cat.UserID, cat.Name).Scan(
					&out.ID,
					&out.UserID,
					&out.Name,
					&out.Status,
					&out.CreatedAt,
				)
			})
			return
		}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	out = cat
	created = true
	return
}

func (repo *CategoriesRepo) ListByUser(ctx context.Context, userID string) (cats []category.Category, err error) {
	var rows pgx.Rows

	err = repo.observe("categories.list_by_user", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT id, user_id, name, status, created_at
			FROM categories
			WHERE user_id = $1
			ORDER BY created_at ASC, name ASC
		`, userID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	cats = make([]category.Category, 0)

	for rows.Next() {
		var c category.Category

		if e := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Status, &c.CreatedAt); e != nil {
			err = e
			return
		}
		cats = append(cats, c)
	}

	if e := rows.Err(); e != nil {
		err = e
		return
	}

	return
}
