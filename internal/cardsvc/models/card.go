package models

import "time"

const (
	CardStatusActive   = "active"
	CardStatusDisabled = "disabled"

	// MaxAccountsPerCard is the number of accounts a single card can hold.
	MaxAccountsPerCard = 5
)

type Card struct {
	CardSN      string     `json:"card_sn"` // Unique serial number
	Status      string     `json:"status"`
	MaxAccounts int        `json:"max_accounts"`
	Accounts    []*Account `json:"accounts"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (c *Card) IsFull() bool {
	return len(c.Accounts) >= c.MaxAccounts
}

func (c *Card) Remaining() int {
	if n := c.MaxAccounts - len(c.Accounts); n > 0 {
		return n
	}
	return 0
}

func (c *Card) IsActive() bool {
	return c.Status == CardStatusActive
}

func ValidStatus(s string) bool {
	return s == CardStatusActive || s == CardStatusDisabled
}
