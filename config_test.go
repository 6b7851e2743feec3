package librarian_test

import (
	"testing"

	librarian "github.com/goliatone/go-librarian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("requires a signing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := librarian.LoadConfig()
		require.Error(t, err)
	})

	t.Run("applies defaults around the secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		cfg, err := librarian.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, ":3000", cfg.HTTPAddr)
		assert.Equal(t, "go-librarian", cfg.GetIssuer())
		assert.Equal(t, 240, cfg.GetAccessTokenExpiration())
		assert.Equal(t, 720, cfg.GetRefreshTokenExpiration())
		assert.Equal(t, "user", cfg.GetContextKey())
		assert.Equal(t, "library@localhost.dev", cfg.Mailer.SenderEmail)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("HTTP_ADDR", ":8080")
		t.Setenv("JWT_ACCESS_TTL_HOURS", "1")

		cfg, err := librarian.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 1, cfg.GetAccessTokenExpiration())
	})
}
