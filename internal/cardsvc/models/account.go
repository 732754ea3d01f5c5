package models

import "time"

// Account is a credential record bound to a card.
type Account struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	Token      string    `json:"token,omitempty"`
	UsageLimit string    `json:"usage_limit,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}
