package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/broker"
	"github.com/avvvet/card-services/internal/cardsvc/models"
	"github.com/avvvet/card-services/internal/cardsvc/store"
	gofrs "github.com/gofrs/uuid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrCardNotFound   = store.ErrCardNotFound
	ErrCardFull       = store.ErrCardFull
	ErrCardDisabled   = store.ErrCardDisabled
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidStatus  = errors.New("invalid card status")
)

// CardStore is implemented by store.FileStore and store.CardStore.
type CardStore interface {
	CreateCard(ctx context.Context, card models.Card) error
	GetCardBySN(ctx context.Context, sn string) (*models.Card, error)
	ListCards(ctx context.Context) ([]*models.Card, error)
	AppendAccount(ctx context.Context, sn string, account models.Account) (*models.Card, error)
	UpdateStatus(ctx context.Context, sn, status string) (*models.Card, error)
}

type EventPublisher interface {
	Publish(topic string, event broker.CardEvent) error
}

type CardService struct {
	store     CardStore
	publisher EventPublisher
	now       func() time.Time
}

func NewCardService(store CardStore) *CardService {
	return &CardService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithPublisher enables card events. A nil publisher disables them.
func (s *CardService) WithPublisher(p EventPublisher) *CardService {
	s.publisher = p
	return s
}

// GenerateCard creates an active card with an empty account list.
func (s *CardService) GenerateCard(ctx context.Context) (*models.Card, error) {
	sn, err := newCardSN()
	if err != nil {
		return nil, err
	}

	now := s.now()
	card := models.Card{
		CardSN:      sn,
		Status:      models.CardStatusActive,
		MaxAccounts: models.MaxAccountsPerCard,
		Accounts:    []*models.Account{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("generate card: %w", err)
	}

	log.Infof("card %s generated", sn)
	s.publish(broker.TopicCardCreated, &card, "")
	return &card, nil
}

func (s *CardService) GetCard(ctx context.Context, sn string) (*models.Card, error) {
	return s.store.GetCardBySN(ctx, strings.TrimSpace(sn))
}

func (s *CardService) ListCards(ctx context.Context) ([]*models.Card, error) {
	return s.store.ListCards(ctx)
}

// AddAccount binds an account record to the card. It fails with
// ErrCardFull once the card holds MaxAccountsPerCard accounts.
func (s *CardService) AddAccount(ctx context.Context, sn string, account models.Account) (*models.Card, error) {
	account.Email = strings.TrimSpace(account.Email)
	if account.Email == "" || account.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidAccount)
	}
	if _, err := mail.ParseAddress(account.Email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccount, err)
	}

	account.ID = uuid.NewString()
	account.AddedAt = s.now()

	card, err := s.store.AppendAccount(ctx, strings.TrimSpace(sn), account)
	if err != nil {
		return nil, err
	}

	log.Infof("account %s bound to card %s (%d/%d)", account.ID, card.CardSN, len(card.Accounts), card.MaxAccounts)
	s.publish(broker.TopicAccountBound, card, account.ID)
	return card, nil
}

func (s *CardService) SetStatus(ctx context.Context, sn, status string) (*models.Card, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	card, err := s.store.UpdateStatus(ctx, strings.TrimSpace(sn), status)
	if err != nil {
		return nil, err
	}

	log.Infof("card %s is now %s", card.CardSN, card.Status)
	s.publish(broker.TopicStatusChanged, card, "")
	return card, nil
}

func (s *CardService) publish(topic string, card *models.Card, accountId string) {
	if s.publisher == nil {
		return
	}

	event := broker.CardEvent{
		CardSN:    card.CardSN,
		Status:    card.Status,
		Accounts:  len(card.Accounts),
		Remaining: card.Remaining(),
		AccountId: accountId,
		Timestamp: s.now(),
	}
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Warnf("card event %s for %s not published: %s", topic, card.CardSN, err)
	}
}

// newCardSN formats 16 hex digits of a v4 uuid as XXXX-XXXX-XXXX-XXXX.
func newCardSN() (string, error) {
	id, err := gofrs.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate card sn: %w", err)
	}

	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:16]
	return hex[0:4] + "-" + hex[4:8] + "-" + hex[8:12] + "-" + hex[12:16], nil
}
