package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkSender struct {
	client   *postmark.Client
	cfg      Config
	renderer *TemplateRenderer
	logger   Logger
}

// NewPostmarkSender creates a Postmark-backed sender. The server token is
// required; failing fast here beats silent non-delivery in production.
func NewPostmarkSender(cfg Config, renderer *TemplateRenderer, logger Logger) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkSender{
		client:   postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:      cfg,
		renderer: renderer,
		logger:   logger,
	}, nil
}

func (s *postmarkSender) Send(ctx context.Context, to, subject, template string, data map[string]any) error {
	if err := validateRecipient(to); err != nil {
		return err
	}

	body, err := s.renderer.Render(template, data)
	if err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		To:         to,
		Subject:    subject,
		HTMLBody:   body,
		Tag:        template,
		TrackOpens: true,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark error %d: %s", ErrFailedToSendEmail, resp.ErrorCode, resp.Message)
	}

	if s.logger != nil {
		s.logger.Debug("mailer: delivered %q to %s", subject, to)
	}

	return nil
}
