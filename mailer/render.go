package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates
var templatesFS embed.FS

// TemplateRenderer renders the embedded email templates. Template names are
// relative to the templates root without extension, e.g. "emails/otp_email".
type TemplateRenderer struct {
	engine *django.Engine
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	root, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to scope templates: %w", err)
	}

	engine := django.NewFileSystem(http.FS(root), ".django")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("mailer: failed to load templates: %w", err)
	}

	return &TemplateRenderer{engine: engine}, nil
}

// Render produces the HTML body for a template
func (r *TemplateRenderer) Render(template string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, template, data); err != nil {
		return "", fmt.Errorf("mailer: failed to render %q: %w", template, err)
	}
	return buf.String(), nil
}
