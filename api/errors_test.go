package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mleone/gatehouse/internal/config"
)

func TestSanitizeError(t *testing.T) {
	err := errors.New("bbolt: database file locked")

	t.Run("Development", func(t *testing.T) {
		a := New(config.Config{})
		assert.Equal(t, "bbolt: database file locked", a.sanitizeError(err))
	})

	t.Run("Production", func(t *testing.T) {
		a := New(config.Config{Env: config.EnvProduction})
		assert.Equal(t, "internal server error", a.sanitizeError(err),
			"production responses must not surface internal error text")
	})
}
