package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "BACKUP_SCHEDULE", "CACHE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "@every 4h", cfg.BackupSchedule)
	assert.Equal(t, 500, cfg.CacheSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_SIZE", "64")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 64, cfg.CacheSize)
}

func TestGetInt(t *testing.T) {
	t.Setenv("SOME_INT", "12")
	assert.Equal(t, 12, GetInt("SOME_INT", 5))

	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 5, GetInt("SOME_INT", 5))

	assert.Equal(t, 5, GetInt("UNSET_INT", 5))
}
