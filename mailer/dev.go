package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes rendered emails to disk instead of delivering them.
type DevSender struct {
	dir      string
	renderer *TemplateRenderer
	logger   Logger
}

func NewDevSender(dir string, renderer *TemplateRenderer, logger Logger) *DevSender {
	return &DevSender{dir: dir, renderer: renderer, logger: logger}
}

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Template  string `json:"template"`
}

func (d *DevSender) Send(ctx context.Context, to, subject, template string, data map[string]any) error {
	if err := validateRecipient(to); err != nil {
		return err
	}

	body, err := d.renderer.Render(template, data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(subject))

	htmlPath := filepath.Join(d.dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write html: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    to,
		Subject:   subject,
		Template:  template,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode metadata: %v", ErrFailedToSendEmail, err)
	}

	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write metadata: %v", ErrFailedToSendEmail, err)
	}

	if d.logger != nil {
		d.logger.Info("mailer: saved %q for %s at %s", subject, to, htmlPath)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
