package mailer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("falls back to the dev sender without a server token", func(t *testing.T) {
		sender, err := New(Config{DevDir: t.TempDir()}, nil)
		require.NoError(t, err)

		_, ok := sender.(*DevSender)
		assert.True(t, ok)
	})

	t.Run("uses postmark when a server token is set", func(t *testing.T) {
		sender, err := New(Config{
			PostmarkServerToken: "pm-token",
			SenderEmail:         "library@example.com",
		}, nil)
		require.NoError(t, err)

		_, ok := sender.(*postmarkSender)
		assert.True(t, ok)
	})

	t.Run("postmark requires a sender address", func(t *testing.T) {
		_, err := New(Config{PostmarkServerToken: "pm-token"}, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestTemplateRenderer(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	t.Run("renders the otp email", func(t *testing.T) {
		html, err := renderer.Render("emails/otp_email", map[string]any{"otp": 123456})
		require.NoError(t, err)

		assert.Contains(t, html, "123456")
	})

	t.Run("renders the new book email", func(t *testing.T) {
		html, err := renderer.Render("emails/new_book", map[string]any{
			"title":    "Dune",
			"author":   "Frank Herbert",
			"category": "Science Fiction",
			"added_by": "author@example.com",
		})
		require.NoError(t, err)

		assert.Contains(t, html, "Dune")
		assert.Contains(t, html, "Frank Herbert")
	})

	t.Run("unknown template errors", func(t *testing.T) {
		_, err := renderer.Render("emails/missing", nil)
		require.Error(t, err)
	})
}

func TestDevSender(t *testing.T) {
	newSender := func(t *testing.T) (*DevSender, string) {
		t.Helper()
		renderer, err := NewTemplateRenderer()
		require.NoError(t, err)
		dir := t.TempDir()
		return NewDevSender(dir, renderer, nil), dir
	}

	t.Run("writes the html body and metadata", func(t *testing.T) {
		sender, dir := newSender(t)

		err := sender.Send(context.Background(), "reader@example.com",
			"Your OTP for Account Verification", "emails/otp_email",
			map[string]any{"otp": 123456})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlName, jsonName string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlName = e.Name()
			case ".json":
				jsonName = e.Name()
			}
		}
		require.NotEmpty(t, htmlName)
		require.NotEmpty(t, jsonName)

		assert.Contains(t, htmlName, "your_otp_for_account_verification")

		html, err := os.ReadFile(filepath.Join(dir, htmlName))
		require.NoError(t, err)
		assert.Contains(t, string(html), "123456")

		meta, err := os.ReadFile(filepath.Join(dir, jsonName))
		require.NoError(t, err)
		assert.Contains(t, string(meta), `"reader@example.com"`)
		assert.Contains(t, string(meta), `"emails/otp_email"`)
	})

	t.Run("rejects an invalid recipient", func(t *testing.T) {
		sender, dir := newSender(t)

		err := sender.Send(context.Background(), "not an address",
			"Subject", "emails/otp_email", map[string]any{"otp": 1})
		require.ErrorIs(t, err, ErrFailedToSendEmail)

		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "your_otp_for_account_verification", sanitizeFilename("Your OTP for Account Verification"))
	assert.Equal(t, "new_book", sanitizeFilename("  New! Book?  "))
	assert.False(t, strings.ContainsAny(sanitizeFilename("a/b\\c:d"), "/\\:"))
}
