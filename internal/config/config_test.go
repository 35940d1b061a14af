package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("GATEHOUSE_PASSWORD", "plain-secret")
	t.Setenv("GATEHOUSE_PASSWORD_HASH", "salt:100000:abcdef")
	t.Setenv("GATEHOUSE_TRUSTED_PROXY", "10.0.0.1")
	t.Setenv("GATEHOUSE_ENV", "production")

	cfg := FromEnv()
	assert.Equal(t, "plain-secret", cfg.Password)
	assert.Equal(t, "salt:100000:abcdef", cfg.PasswordHash)
	assert.Equal(t, "10.0.0.1", cfg.TrustedProxy)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("GATEHOUSE_PASSWORD", "")
	t.Setenv("GATEHOUSE_PASSWORD_HASH", "")
	t.Setenv("GATEHOUSE_TRUSTED_PROXY", "")
	t.Setenv("GATEHOUSE_ENV", "")

	cfg := FromEnv()
	assert.Empty(t, cfg.Password)
	assert.Empty(t, cfg.PasswordHash)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
}
