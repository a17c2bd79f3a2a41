package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeswanth1218/flutter-api/internal/domain/card"
	"github.com/yeswanth1218/flutter-api/internal/observability"
)

const cardColumns = `card_id, user_id, name, job_title, company, phone, email, website, address,
	linkedin, twitter, facebook, instagram, additional_info, tags, card_type, status, created_at, updated_at`

type CardsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCardsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CardsRepo {
	return &CardsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *CardsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanCard(row pgx.Row, c *card.Card) error {
	return row.Scan(
		&c.CardID,
		&c.UserID,
		&c.Name,
		&c.JobTitle,
		&c.Company,
		&c.Phone,
		&c.Email,
		&c.Website,
		&c.Address,
		&c.LinkedIn,
		&c.Twitter,
		&c.Facebook,
		&c.Instagram,
		&c.AdditionalInfo,
		&c.Tags,
		&c.CardType,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (repo *CardsRepo) Create(ctx context.Context, c card.Card) error {
	return repo.observe("cards.insert", func() error {
		_, err := repo.pool.Exec(ctx, `
			INSERT INTO cards (`+cardColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		`,
			c.CardID, c.UserID, c.Name, c.JobTitle, c.Company, c.Phone, c.Email, c.Website, c.Address,
			c.LinkedIn, c.Twitter, c.Facebook, c.Instagram, c.AdditionalInfo, c.Tags, c.CardType,
			c.Status, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})
}

// ListActiveByUser returns the user's live cards newest first.
// Soft-deleted rows never make it out of here.
func (repo *CardsRepo) ListActiveByUser(ctx context.Context, userID string) (cards []card.Card, err error) {
	var rows pgx.Rows

	err = repo.observe("cards.list_active_by_user", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+cardColumns+`
			FROM cards
			WHERE user_id = $1 AND status = $2
			ORDER BY created_at DESC
		`, userID, card.StatusActive)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	cards = make([]card.Card, 0)

	for rows.Next() {
		var c card.Card

		if e := scanCard(rows, &c); e != nil {
			err = e
			return
		}
		cards = append(cards, c)
	}

	if e := rows.Err(); e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("cards.list_active_by_user", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// UpdateFields applies the typed column slots from card.BuildUpdates in
// one statement. Column names come from the allow-list, request text
// never reaches the SQL. updated_at always rides along.
func (repo *CardsRepo) UpdateFields(ctx context.Context, userID, cardID string, updates []card.FieldUpdate) (card.Card, error) {
	sets := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+3)

	argsPosition := 1

	for _, u := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", u.Column, argsPosition))
		args = append(args, u.Value)
		argsPosition++
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argsPosition))
	args = append(args, time.Now().UTC())
	argsPosition++

	query := fmt.Sprintf(`
		UPDATE cards
		SET %s
		WHERE card_id = $%d AND user_id = $%d
		RETURNING `+cardColumns,
		strings.Join(sets, ", "), argsPosition, argsPosition+1)

	args = append(args, cardID, userID)

	var c card.Card

	err := repo.observe("cards.update_fields", func() error {
		return scanCard(repo.pool.QueryRow(ctx, query, args...), &c)
	})

	if err != nil {
		// no row means the card does not exist or belongs to someone else
		if errors.Is(err, pgx.ErrNoRows) {
			return card.Card{}, card.ErrNotFound
		}

		return card.Card{}, err
	}

	return c, nil
}

// SoftDelete flips status inside a row lock so a concurrent second
// delete reliably sees the flip. Returns the owning user id so callers
// can invalidate that user's listing.
func (repo *CardsRepo) SoftDelete(ctx context.Context, cardID string) (userID string, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var status int16

	err = repo.observe("cards.soft_delete.lock", func() error {
		return tx.QueryRow(ctx, `SELECT user_id, status FROM cards WHERE card_id = $1 FOR UPDATE`, cardID).Scan(&userID, &status)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = card.ErrNotFound
		}

		return
	}

	if status == card.StatusDeleted {
		err = card.ErrAlreadyDeleted

		return
	}

	err = repo.observe("cards.soft_delete.update", func() error {
		_, e := tx.Exec(ctx,
			`UPDATE cards SET status = $2, updated_at = $3 WHERE card_id = $1`,
			cardID, card.StatusDeleted, time.Now().UTC(),
		)
		return e
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}
