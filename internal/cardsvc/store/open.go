package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/config"
	"github.com/avvvet/card-services/internal/cardsvc/db"
	"github.com/avvvet/card-services/internal/cardsvc/models"
	log "github.com/sirupsen/logrus"
)

type Ledger interface {
	CreateCard(ctx context.Context, card models.Card) error
	GetCardBySN(ctx context.Context, sn string) (*models.Card, error)
	ListCards(ctx context.Context) ([]*models.Card, error)
	AppendAccount(ctx context.Context, sn string, account models.Account) (*models.Card, error)
	UpdateStatus(ctx context.Context, sn, status string) (*models.Card, error)
}

// Open returns the ledger selected by cfg.Backend and a func that
// releases it.
func Open(cfg config.Config) (Ledger, func(), error) {
	switch cfg.Backend {
	case config.BackendFile:
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.BackendPostgres:
		pool, err := db.Connect(cfg.DBUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Printf("pg connection established successfully")

		s := NewCardStore(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureSchema(ctx); err != nil {
			db.ClosePool()
			return nil, nil, err
		}
		return s, db.ClosePool, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
