package authware

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaims struct {
	uid   string
	email string
}

func (s stubClaims) UserID() string    { return s.uid }
func (s stubClaims) UserEmail() string { return s.email }

type stubVerifier struct {
	claims Claims
	err    error
	seen   string
}

func (s *stubVerifier) Verify(tokenString string) (Claims, error) {
	s.seen = tokenString
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func newTestApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", New(cfg), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c, cfg.ContextKey)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(principal)
	})
	return app
}

func loaderFor(principal Principal) PrincipalLoader {
	return func(ctx context.Context, uid string) (Principal, error) {
		if uid != principal.UID {
			return Principal{}, fmt.Errorf("unknown uid %s", uid)
		}
		return principal, nil
	}
}

func TestGate(t *testing.T) {
	principal := Principal{UID: "user-1", Email: "reader@example.com"}

	t.Run("missing header is rejected", func(t *testing.T) {
		verifier := &stubVerifier{}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"code":401,"message":"Access token required"}`, string(body))
		assert.Empty(t, verifier.seen, "verifier should not run without a header")
	})

	t.Run("lowercase scheme is rejected", func(t *testing.T) {
		verifier := &stubVerifier{claims: stubClaims{uid: principal.UID}}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "bearer abc.def.ghi")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token is the raw remainder after the prefix", func(t *testing.T) {
		verifier := &stubVerifier{claims: stubClaims{uid: principal.UID, email: principal.Email}}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer  spaced.token")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, " spaced.token", verifier.seen)
	})

	t.Run("verification failure surfaces its message", func(t *testing.T) {
		verifier := &stubVerifier{
			err: errors.New("Token has expired", errors.CategoryAuth).WithCode(errors.CodeUnauthorized),
		}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale.token")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"code":401,"message":"Token has expired"}`, string(body))
	})

	t.Run("valid token with missing principal is rejected", func(t *testing.T) {
		verifier := &stubVerifier{claims: stubClaims{uid: "ghost"}}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer good.token")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"code":401,"message":"User not found or inactive"}`, string(body))
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		verifier := &stubVerifier{claims: stubClaims{uid: principal.UID, email: principal.Email}}
		app := newTestApp(Config{Verifier: verifier, LoadPrincipal: loaderFor(principal)})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer good.token")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"uid":"user-1","email":"reader@example.com"}`, string(body))
	})
}

func TestRefreshHandler(t *testing.T) {
	principal := Principal{UID: "user-1", Email: "reader@example.com"}

	t.Run("echoes the presented token as the refresh token", func(t *testing.T) {
		verifier := &stubVerifier{claims: stubClaims{uid: principal.UID, email: principal.Email}}

		var gotToken string
		refresh := func(uid, email, presentedToken string) (any, error) {
			gotToken = presentedToken
			return map[string]any{
				"accessToken":  "fresh.access",
				"refreshToken": presentedToken,
			}, nil
		}

		app := fiber.New()
		app.Post("/auth/refresh-token", RefreshHandler(Config{
			Verifier:      verifier,
			LoadPrincipal: loaderFor(principal),
		}, refresh))

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		req.Header.Set("Authorization", "Bearer old.refresh")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "old.refresh", gotToken)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{
			"code": 200,
			"message": "success",
			"data": {"accessToken":"fresh.access","refreshToken":"old.refresh"}
		}`, string(body))
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		refreshed := false
		app := fiber.New()
		app.Post("/auth/refresh-token", RefreshHandler(Config{
			Verifier:      &stubVerifier{},
			LoadPrincipal: loaderFor(principal),
		}, func(uid, email, presentedToken string) (any, error) {
			refreshed = true
			return nil, nil
		}))

		req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.False(t, refreshed, "refresh should not run without a header")
	})
}
