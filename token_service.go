package librarian

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair is an issued access/refresh token pair. ExpirationTime is the
// decoded exp claim of the access token, seconds since epoch.
type TokenPair struct {
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken"`
	ExpirationTime int64  `json:"expirationTime"`
}

// SessionClaims are the claims both tokens of a pair carry
type SessionClaims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID returns the uid claim
func (c *SessionClaims) UserID() string { return c.UID }

// UserEmail returns the email claim
func (c *SessionClaims) UserEmail() string { return c.Email }

// TokenService signs and validates the token pairs the API hands out
type TokenService interface {
	IssuePair(uid, email string) (*TokenPair, error)
	Refresh(uid, email, presentedToken string) (*TokenPair, error)
	Verify(tokenString string) (*SessionClaims, error)
}

// TokenServiceImpl implements TokenService with HS256 against one secret.
// All state is embedded in the signed tokens; there is no revocation list,
// and rotating the secret invalidates every outstanding token.
type TokenServiceImpl struct {
	signingKey        []byte
	accessExpiration  int
	refreshExpiration int
	issuer            string
	logger            Logger
}

// NewTokenService creates a TokenService from the injected config
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:        []byte(cfg.GetSigningKey()),
		accessExpiration:  cfg.GetAccessTokenExpiration(),
		refreshExpiration: cfg.GetRefreshTokenExpiration(),
		issuer:            cfg.GetIssuer(),
		logger:            logger,
	}
}

// IssuePair signs a fresh access/refresh pair carrying the same claims
func (ts *TokenServiceImpl) IssuePair(uid, email string) (*TokenPair, error) {
	now := time.Now()

	access, exp, err := ts.sign(uid, email, now, time.Duration(ts.accessExpiration)*time.Hour)
	if err != nil {
		return nil, err
	}

	refresh, _, err := ts.sign(uid, email, now, time.Duration(ts.refreshExpiration)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:    access,
		RefreshToken:   refresh,
		ExpirationTime: exp,
	}, nil
}

// Refresh issues a new access token for the claims and passes the presented
// refresh token through unchanged. There is no refresh-token rotation.
func (ts *TokenServiceImpl) Refresh(uid, email, presentedToken string) (*TokenPair, error) {
	access, exp, err := ts.sign(uid, email, time.Now(), time.Duration(ts.accessExpiration)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:    access,
		RefreshToken:   presentedToken,
		ExpirationTime: exp,
	}, nil
}

// Verify validates signature and expiry and returns the structured claims
func (ts *TokenServiceImpl) Verify(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService verify could not decode claims")
	return nil, ErrTokenMalformed
}

func (ts *TokenServiceImpl) sign(uid, email string, now time.Time, ttl time.Duration) (string, int64, error) {
	exp := now.Add(ttl)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UID:   uid,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, exp.Unix(), nil
}
