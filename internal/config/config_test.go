package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":         "test",
		"APP_PORT":        "8080",
		"DB_USER":         "root",
		"DB_HOST":         "localhost",
		"DB_PORT":         "3306",
		"DB_NAME":         "wc_check",
		"SESSION_SECRET":  "0123456789abcdef0123456789abcdef",
		"SESSION_TTL_MIN": "60",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaultsBcryptCost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BCRYPT_COST", "")

	cfg := Load()
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProd())
}

func TestLoadExplicitBcryptCost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BCRYPT_COST", "12")

	assert.Equal(t, 12, Load().BcryptCost)
}
