package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/models"
	log "github.com/sirupsen/logrus"
)

const cardsFile = "cards.json"

// FileStore keeps every card in one JSON document that is rewritten on
// each mutation.
type FileStore struct {
	mu    sync.Mutex
	path  string
	cards map[string]*models.Card
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		path:  filepath.Join(dir, cardsFile),
		cards: make(map[string]*models.Card),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	log.Infof("file store loaded %d cards from %s", len(s.cards), s.path)
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cards); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	return nil
}

// save must be called with mu held.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.cards, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) CreateCard(ctx context.Context, card models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.CardSN]; ok {
		return fmt.Errorf("%s: %w", card.CardSN, ErrCardExists)
	}

	c := cloneCard(&card)
	s.cards[card.CardSN] = c
	if err := s.save(); err != nil {
		delete(s.cards, card.CardSN)
		return err
	}
	return nil
}

func (s *FileStore) GetCardBySN(ctx context.Context, sn string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[sn]
	if !ok {
		return nil, ErrCardNotFound
	}
	return cloneCard(c), nil
}

// ListCards returns all cards ordered by creation time.
func (s *FileStore) ListCards(ctx context.Context) ([]*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make([]*models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		cards = append(cards, cloneCard(c))
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CardSN < cards[j].CardSN
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
	return cards, nil
}

func (s *FileStore) AppendAccount(ctx context.Context, sn string, account models.Account) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[sn]
	if !ok {
		return nil, ErrCardNotFound
	}
	if !c.IsActive() {
		return nil, ErrCardDisabled
	}
	if c.IsFull() {
		return nil, ErrCardFull
	}

	prevUpdated := c.UpdatedAt
	a := account
	c.Accounts = append(c.Accounts, &a)
	c.UpdatedAt = account.AddedAt
	if err := s.save(); err != nil {
		c.Accounts = c.Accounts[:len(c.Accounts)-1]
		c.UpdatedAt = prevUpdated
		return nil, err
	}
	return cloneCard(c), nil
}

func (s *FileStore) UpdateStatus(ctx context.Context, sn, status string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[sn]
	if !ok {
		return nil, ErrCardNotFound
	}

	prevStatus, prevUpdated := c.Status, c.UpdatedAt
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	if err := s.save(); err != nil {
		c.Status, c.UpdatedAt = prevStatus, prevUpdated
		return nil, err
	}
	return cloneCard(c), nil
}

func cloneCard(c *models.Card) *models.Card {
	out := *c
	out.Accounts = make([]*models.Account, len(c.Accounts))
	for i, a := range c.Accounts {
		cp := *a
		out.Accounts[i] = &cp
	}
	return &out
}
