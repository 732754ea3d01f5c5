package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	card_sn      TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	max_accounts INT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS card_accounts (
	id          TEXT PRIMARY KEY,
	card_sn     TEXT NOT NULL REFERENCES cards(card_sn),
	email       TEXT NOT NULL,
	password    TEXT NOT NULL,
	token       TEXT NOT NULL DEFAULT '',
	usage_limit TEXT NOT NULL DEFAULT '',
	added_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS card_accounts_card_sn_idx ON card_accounts (card_sn);
`

// CardStore is the postgres backed card ledger.
type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create card schema: %w", err)
	}
	return nil
}

func (s *CardStore) CreateCard(ctx context.Context, card models.Card) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO cards (card_sn, status, max_accounts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (card_sn) DO NOTHING
	`, card.CardSN, card.Status, card.MaxAccounts, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", card.CardSN, ErrCardExists)
	}
	return nil
}

func (s *CardStore) GetCardBySN(ctx context.Context, sn string) (*models.Card, error) {
	card, err := scanCard(s.db.QueryRow(ctx, `
		SELECT card_sn, status, max_accounts, created_at, updated_at
		FROM cards
		WHERE card_sn = $1
	`, sn))
	if err != nil {
		return nil, err
	}

	card.Accounts, err = s.accountsFor(ctx, s.db, sn)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardStore) ListCards(ctx context.Context) ([]*models.Card, error) {
	rows, err := s.db.Query(ctx, `
		SELECT card_sn, status, max_accounts, created_at, updated_at
		FROM cards
		ORDER BY created_at, card_sn
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	var cards []*models.Card
	for rows.Next() {
		c := &models.Card{}
		if err := rows.Scan(&c.CardSN, &c.Status, &c.MaxAccounts, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	for _, c := range cards {
		if c.Accounts, err = s.accountsFor(ctx, s.db, c.CardSN); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// AppendAccount locks the card row so the capacity check and the insert
// happen in one transaction.
func (s *CardStore) AppendAccount(ctx context.Context, sn string, account models.Account) (*models.Card, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	card, err := scanCard(tx.QueryRow(ctx, `
		SELECT card_sn, status, max_accounts, created_at, updated_at
		FROM cards
		WHERE card_sn = $1
		FOR UPDATE
	`, sn))
	if err != nil {
		return nil, err
	}
	if !card.IsActive() {
		return nil, ErrCardDisabled
	}

	card.Accounts, err = s.accountsFor(ctx, tx, sn)
	if err != nil {
		return nil, err
	}
	if card.IsFull() {
		return nil, ErrCardFull
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO card_accounts (id, card_sn, email, password, token, usage_limit, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.ID, sn, account.Email, account.Password, account.Token, account.UsageLimit, account.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE cards SET updated_at = $2 WHERE card_sn = $1`, sn, account.AddedAt); err != nil {
		return nil, fmt.Errorf("failed to touch card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	a := account
	card.Accounts = append(card.Accounts, &a)
	card.UpdatedAt = account.AddedAt
	return card, nil
}

func (s *CardStore) UpdateStatus(ctx context.Context, sn, status string) (*models.Card, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE cards SET status = $2, updated_at = $3 WHERE card_sn = $1
	`, sn, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update card status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCardNotFound
	}
	return s.GetCardBySN(ctx, sn)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *CardStore) accountsFor(ctx context.Context, q querier, sn string) ([]*models.Account, error) {
	rows, err := q.Query(ctx, `
		SELECT id, email, password, token, usage_limit, added_at
		FROM card_accounts
		WHERE card_sn = $1
		ORDER BY added_at, id
	`, sn)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts for card: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		a := &models.Account{}
		if err := rows.Scan(&a.ID, &a.Email, &a.Password, &a.Token, &a.UsageLimit, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanCard(row pgx.Row) (*models.Card, error) {
	var card models.Card
	err := row.Scan(
		&card.CardSN,
		&card.Status,
		&card.MaxAccounts,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card by sn: %w", err)
	}
	return &card, nil
}
