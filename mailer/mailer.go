// Package mailer sends transactional email for the librarian service. The
// Postmark-backed sender is used when a server token is configured; the dev
// sender writes rendered emails to disk so local flows stay inspectable
// without an email account.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidConfig     = errors.New("mailer: invalid configuration")
	ErrFailedToSendEmail = errors.New("mailer: failed to send email")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sender delivers a rendered template to one recipient. Matches the Mailer
// port the service layer consumes.
type Sender interface {
	Send(ctx context.Context, to, subject, template string, data map[string]any) error
}

// Config holds delivery configuration. Tokens are optional so development
// environments can run without Postmark; SenderEmail establishes the
// outbound identity.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"library@localhost.dev"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// New picks a sender for the config: Postmark when a server token is
// present, the disk-backed dev sender otherwise.
func New(cfg Config, logger Logger) (Sender, error) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	if cfg.PostmarkServerToken != "" {
		return NewPostmarkSender(cfg, renderer, logger)
	}

	return NewDevSender(cfg.DevDir, renderer, logger), nil
}

func validateRecipient(to string) error {
	if !emailRegex.MatchString(to) {
		return fmt.Errorf("%w: invalid recipient %q", ErrFailedToSendEmail, to)
	}
	return nil
}
