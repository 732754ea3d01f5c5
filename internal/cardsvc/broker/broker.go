package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	TopicCardCreated   = "card.created"
	TopicAccountBound  = "card.account.bound"
	TopicStatusChanged = "card.status.changed"
)

// CardEvent is the payload published on every card topic. Account
// credentials are never part of it.
type CardEvent struct {
	CardSN    string    `json:"card_sn"`
	Status    string    `json:"status"`
	Accounts  int       `json:"accounts"`
	Remaining int       `json:"remaining"`
	AccountId string    `json:"account_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) Publish(topic string, event CardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := b.Conn.Publish(topic, data); err != nil {
		log.Errorf("Error publishing to %s: %s", topic, err)
		return err
	}
	return nil
}
