package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardCapacity(t *testing.T) {
	c := &Card{MaxAccounts: MaxAccountsPerCard}
	assert.False(t, c.IsFull())
	assert.Equal(t, 5, c.Remaining())

	for i := 0; i < MaxAccountsPerCard; i++ {
		c.Accounts = append(c.Accounts, &Account{})
	}
	assert.True(t, c.IsFull())
	assert.Equal(t, 0, c.Remaining())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(CardStatusActive))
	assert.True(t, ValidStatus(CardStatusDisabled))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("paused"))
}
