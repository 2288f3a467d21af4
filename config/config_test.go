package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDatabasePoolDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 4, cfg.Database.MaxIdleConns)
}

func TestLoadConfigDatabasePoolOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_MAX_IDLE_CONNS", "10")

	cfg := LoadConfig()
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
}
