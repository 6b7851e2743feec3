package librarian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options the auth and token components need
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAccessTokenExpiration() int
	GetRefreshTokenExpiration() int
	GetContextKey() string
}

// Mailer is the outbound email port. Implementations should not panic;
// callers decide whether a send failure is fatal for their flow.
type Mailer interface {
	Send(ctx context.Context, to, subject, template string, data map[string]any) error
}

// UserOperations is the credential lifecycle orchestrator surface consumed
// by the HTTP controllers.
type UserOperations interface {
	Register(ctx context.Context, email, password string) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, email string, code int, otpType OtpType) error
	ResendOTP(ctx context.Context, email string, otpType OtpType) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email, newPassword string) error
	User(ctx context.Context, id uuid.UUID) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookOperations is the catalog surface consumed by the HTTP controllers.
type BookOperations interface {
	List(ctx context.Context, filters BookFilters) (*BookPage, error)
	Book(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, input CreateBookInput, userID uuid.UUID) (*Book, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateBookInput, userID uuid.UUID) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*DeleteAck, error)
}

// NewLogger returns a printf-style logger that prefixes every line with the
// given name. Components fall back to an unnamed variant when given nil.
func NewLogger(name string) Logger {
	return defLogger{name: name}
}

type defLogger struct {
	name string
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] "+d.prefix()+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] "+d.prefix()+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] "+d.prefix()+newline(format), args...)
}

func (d defLogger) prefix() string {
	if d.name == "" {
		return "LIBRARIAN "
	}
	return d.name + " "
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
