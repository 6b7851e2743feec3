package librarian

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-librarian/middleware/authware"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// RouterConfig carries everything RegisterRoutes needs to mount the API
type RouterConfig struct {
	Users  UserOperations
	Books  BookOperations
	Tokens TokenService
	Config Config
	Logger Logger
	Debug  bool
}

// RegisterRoutes mounts the user and book endpoints under /api. The book
// routes, /me, and the refresh endpoint sit behind the bearer gate.
func RegisterRoutes(app *fiber.App, cfg RouterConfig) {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	users := NewUserController(cfg.Users, WithUserControllerLogger(cfg.Logger), WithUserControllerDebug(cfg.Debug))
	users.ContextKey = cfg.Config.GetContextKey()

	books := NewBookController(cfg.Books, WithBookControllerLogger(cfg.Logger))
	books.ContextKey = cfg.Config.GetContextKey()

	gateCfg := authware.Config{
		Verifier:      tokenVerifier{cfg.Tokens},
		LoadPrincipal: principalLoader(cfg.Users),
		ContextKey:    cfg.Config.GetContextKey(),
	}
	gate := authware.New(gateCfg)

	api := app.Group("/api")

	usr := api.Group("/users")
	usr.Post("/register", users.Register)
	usr.Post("/verify-otp", users.VerifyOTP)
	usr.Post("/resend-otp", users.ResendOTP)
	usr.Post("/login", users.Login)
	usr.Post("/forgot-password", users.ForgotPassword)
	usr.Get("/refresh-token", authware.RefreshHandler(gateCfg, func(uid, email, presentedToken string) (any, error) {
		return cfg.Tokens.Refresh(uid, email, presentedToken)
	}))
	usr.Get("/me", gate, users.Me)
	usr.Delete("/me", gate, users.Deactivate)

	bks := api.Group("/books", gate)
	bks.Get("/", books.List)
	bks.Get("/:id", books.Show)
	bks.Post("/", books.Create)
	bks.Put("/:id", books.Update)
	bks.Delete("/:id", books.Delete)
}

// tokenVerifier adapts TokenService.Verify to the authware Claims contract
type tokenVerifier struct {
	tokens TokenService
}

func (v tokenVerifier) Verify(tokenString string) (authware.Claims, error) {
	claims, err := v.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func principalLoader(users UserOperations) authware.PrincipalLoader {
	return func(ctx context.Context, uid string) (authware.Principal, error) {
		id, err := uuid.Parse(uid)
		if err != nil {
			return authware.Principal{}, errors.Wrap(err, errors.CategoryAuth, "invalid uid claim").
				WithCode(errors.CodeUnauthorized)
		}

		user, err := users.User(ctx, id)
		if err != nil {
			return authware.Principal{}, err
		}

		return authware.Principal{UID: user.ID.String(), Email: user.Email}, nil
	}
}

func respondData(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"code":    status,
		"message": message,
		"data":    data,
	})
}

// renderError maps rich errors to the wire shape {code, message}. Internal
// detail stays on the server side unless debug is on.
func renderError(c *fiber.Ctx, logger Logger, debug bool, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	logger.Info(
		"request error category=%s code=%d message=%s details=%s",
		richErr.Category,
		richErr.Code,
		richErr.Message,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	message := richErr.Message
	if richErr.Category == errors.CategoryInternal && !debug {
		message = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"code":    status,
		"message": message,
	})
}

func renderValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    fiber.StatusBadRequest,
		"message": "Validation failed",
		"errors":  formatValidationErrors(err),
	})
}

func renderBindError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    fiber.StatusBadRequest,
		"message": "Failed to parse request body",
	})
}

func formatValidationErrors(err error) map[string]string {
	out := map[string]string{}
	var fields validation.Errors
	if errors.As(err, &fields) {
		for name, ferr := range fields {
			out[name] = ferr.Error()
		}
		return out
	}
	out["payload"] = err.Error()
	return out
}
