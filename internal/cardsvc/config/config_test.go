package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CARD_SERVICE_PORT", "STORE_BACKEND", "DATA_DIR", "RATE_LIMIT", "POSTGRES_URL", "NATS_URL"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, BackendFile, c.Backend)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, 60, c.RateLimit)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CARD_SERVICE_PORT", "8080")
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/cards")

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, BackendPostgres, c.Backend)
	assert.Equal(t, 10, c.RateLimit)
	assert.Equal(t, "postgres://u:p@localhost:5432/cards", c.DBUrl)
}

func TestLoad_IgnoresBadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT", "lots")

	assert.Equal(t, 60, Load().RateLimit)
}
