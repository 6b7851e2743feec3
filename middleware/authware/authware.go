// Package authware gates fiber routes behind bearer access tokens. It
// mirrors the token service contract through local interfaces to avoid an
// import cycle with the root package.
package authware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// bearerPrefix matching is exact: capital B, single space. The token is the
// raw remainder of the header, no trimming beyond the prefix cut, so a
// value embedding whitespace reaches verification unchanged.
const bearerPrefix = "Bearer "

// DefaultContextKey is where the principal lands in ctx.Locals
const DefaultContextKey = "user"

// Claims is the validated-token surface the middleware needs
type Claims interface {
	UserID() string
	UserEmail() string
}

// TokenVerifier mirrors TokenService.Verify
type TokenVerifier interface {
	Verify(tokenString string) (Claims, error)
}

// Principal is the authenticated identity attached to the request
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// PrincipalLoader resolves a verified uid claim to the persisted identity
type PrincipalLoader func(ctx context.Context, uid string) (Principal, error)

// TokenRefresher mirrors TokenService.Refresh; the returned payload is
// serialized as the response data untouched.
type TokenRefresher func(uid, email, presentedToken string) (any, error)

type Config struct {
	Verifier      TokenVerifier
	LoadPrincipal PrincipalLoader
	ContextKey    string
	ErrorHandler  func(c *fiber.Ctx, status int, message string) error
}

func (cfg *Config) setDefaults() {
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}
}

// New returns the request gate: NoHeader or malformed scheme rejects with
// 401 before any token work; verification failures surface their message;
// a verified token whose principal no longer exists is still rejected.
func New(cfg Config) fiber.Handler {
	cfg.setDefaults()

	return func(c *fiber.Ctx) error {
		token, ok := extractBearerToken(c)
		if !ok {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, "Access token required")
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, errorMessage(err))
		}

		principal, err := cfg.LoadPrincipal(c.UserContext(), claims.UserID())
		if err != nil {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, "User not found or inactive")
		}

		c.Locals(cfg.ContextKey, principal)

		return c.Next()
	}
}

// RefreshHandler validates the presented token like the gate does, then
// responds with a new access token and the presented token echoed back as
// the refresh token.
func RefreshHandler(cfg Config, refresh TokenRefresher) fiber.Handler {
	cfg.setDefaults()

	return func(c *fiber.Ctx) error {
		token, ok := extractBearerToken(c)
		if !ok {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, "Access token required")
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, errorMessage(err))
		}

		principal, err := cfg.LoadPrincipal(c.UserContext(), claims.UserID())
		if err != nil {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, "invalid token")
		}

		pair, err := refresh(principal.UID, principal.Email, token)
		if err != nil {
			return cfg.ErrorHandler(c, fiber.StatusUnauthorized, errorMessage(err))
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"code":    fiber.StatusOK,
			"message": "success",
			"data":    pair,
		})
	}
}

// PrincipalFromCtx returns the principal the gate attached, if any
func PrincipalFromCtx(c *fiber.Ctx, contextKey string) (Principal, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	principal, ok := c.Locals(contextKey).(Principal)
	return principal, ok
}

func extractBearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}

func errorMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Invalid token"
}

func defaultErrorHandler(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"code":    status,
		"message": message,
	})
}
