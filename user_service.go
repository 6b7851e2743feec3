package librarian

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const (
	subjectAccountVerification = "Your OTP for Account Verification"
	subjectPasswordReset       = "Your OTP for Password Reset"
	otpEmailTemplate           = "emails/otp_email"
)

// RegisterResult is the public outcome of a registration request
type RegisterResult struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Message string    `json:"message"`
}

// LoginResult binds the issued token pair to the identity it belongs to
type LoginResult struct {
	UID       string     `json:"uid"`
	Email     string     `json:"email"`
	AuthToken *TokenPair `json:"authToken"`
}

// UserService sequences hashing, OTP issuance, persistence, and email
// dispatch for the register / login / forgot-password / verify flows.
// Persistence writes always happen before email dispatch; a failed email is
// logged and does not roll back the committed state change.
type UserService struct {
	repo   RepositoryManager
	tokens TokenService
	mail   Mailer
	logger Logger
}

var _ UserOperations = (*UserService)(nil)

type UserServiceOption func(*UserService)

func WithUserServiceLogger(logger Logger) UserServiceOption {
	return func(s *UserService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewUserService(repo RepositoryManager, tokens TokenService, mail Mailer, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:   repo,
		tokens: tokens,
		mail:   mail,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Register starts the account lifecycle for email. A verified identity is a
// conflict; an unverified one gets its pending OTP and credential replaced
// in place, so re-registering before verification never duplicates.
func (s *UserService) Register(ctx context.Context, email, password string) (*RegisterResult, error) {
	email = normalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	if user != nil && user.Verified {
		return nil, ErrUserExists
	}

	cred, err := HashPassword(password, nil)
	if err != nil {
		return nil, err
	}

	if user != nil {
		// Existing unverified record: park the new credential inside the
		// OTP record; the active credential stays untouched until verify.
		rec := nextOtpRecord(user.Otp, OtpTypeRegister, &cred, time.Now())
		if user, err = s.repo.Users().SaveOTP(ctx, user.ID, rec); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update pending registration")
		}
		s.dispatchOTP(ctx, user.Email, rec)

		return &RegisterResult{ID: user.ID, Email: user.Email, Message: "Please verify your email"}, nil
	}

	rec := nextOtpRecord(nil, OtpTypeRegister, nil, time.Now())
	record := &User{
		ID:           deriveUserID(email),
		Email:        email,
		PasswordHash: cred.Hash,
		PasswordSalt: cred.Salt,
		Verified:     false,
		Otp:          rec,
	}

	if record, err = s.repo.Users().Create(ctx, record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
			WithCode(goerrors.CodeBadRequest)
	}

	s.dispatchOTP(ctx, record.Email, rec)

	return &RegisterResult{ID: record.ID, Email: record.Email, Message: "Please verify your email"}, nil
}

// VerifyOTP consumes a pending code. The absolute expiry runs from the
// record's CreatedAt regardless of how often the reuse window was extended.
// On success the pending credential (if any) becomes active, and the
// register flow additionally marks the identity verified.
func (s *UserService) VerifyOTP(ctx context.Context, email string, code int, otpType OtpType) error {
	email = normalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	rec := user.Otp
	if rec == nil || rec.Type != otpType {
		return ErrOTPNotFound
	}

	if time.Now().After(rec.CreatedAt.Add(otpAbsoluteExpiry)) {
		return ErrOTPExpired
	}

	if subtle.ConstantTimeEq(int32(rec.Code), int32(code)) != 1 {
		return ErrOTPInvalid
	}

	markVerified := otpType == OtpTypeRegister
	if _, err := s.repo.Users().ConsumeOTP(ctx, user.ID, rec.Pending, markVerified); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume OTP")
	}

	return nil
}

// ResendOTP re-dispatches a code for the given flow, reusing the current
// one while it is inside the reuse window. The fresh record replaces the
// pending one wholesale, matching how the store has always behaved.
func (s *UserService) ResendOTP(ctx context.Context, email string, otpType OtpType) error {
	email = normalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	rec := nextOtpRecord(user.Otp, otpType, nil, time.Now())
	if _, err := s.repo.Users().SaveOTP(ctx, user.ID, rec); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save OTP")
	}

	s.dispatchOTP(ctx, email, rec)

	return nil
}

// Login authenticates a verified identity and issues a fresh token pair
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, email, WithVerifiedOnly())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRegisterFirst
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	if !VerifyPassword(user.Credential(), password) {
		return nil, ErrInvalidPassword
	}

	pair, err := s.tokens.IssuePair(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		UID:       user.ID.String(),
		Email:     user.Email,
		AuthToken: pair,
	}, nil
}

// ForgotPassword hashes the replacement password into a pending credential
// attached to a forgot-password OTP record. The new password takes effect
// only when VerifyOTP succeeds with the emailed code.
func (s *UserService) ForgotPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, email, WithVerifiedOnly())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	cred, err := HashPassword(newPassword, nil)
	if err != nil {
		return err
	}

	rec := nextOtpRecord(user.Otp, OtpTypeForgotPassword, &cred, time.Now())
	if _, err := s.repo.Users().SaveOTP(ctx, user.ID, rec); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save OTP")
	}

	s.dispatchOTP(ctx, email, rec)

	return nil
}

// User fetches a profile by id
func (s *UserService) User(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}
	return user, nil
}

// Delete soft deletes an identity
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Users().SoftDelete(ctx, id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}
	return nil
}

// dispatchOTP emails a code after the state change committed. The mailer
// port collapses failures into an error the flows log and move past.
func (s *UserService) dispatchOTP(ctx context.Context, email string, rec *OtpRecord) {
	subject := subjectAccountVerification
	if rec.Type == OtpTypeForgotPassword {
		subject = subjectPasswordReset
	}

	err := s.mail.Send(ctx, email, subject, otpEmailTemplate, map[string]any{
		"otp": rec.Code,
	})
	if err != nil {
		s.logger.Error("failed to send OTP email: %s", err)
	}
}

// nextOtpRecord applies the regenerate-or-reuse rule. Codes are only reused
// across requests of the same type, and CreatedAt survives from the prior
// record of that type so the absolute expiry keeps its original anchor.
func nextOtpRecord(existing *OtpRecord, otpType OtpType, pending *Credential, now time.Time) *OtpRecord {
	var prior *OtpRecord
	if existing != nil && existing.Type == otpType {
		prior = existing
	}

	issue := GenerateOTP(prior, now)

	created := now
	if prior != nil && !prior.CreatedAt.IsZero() {
		created = prior.CreatedAt
	}

	return &OtpRecord{
		Code:      issue.Code,
		Type:      otpType,
		CreatedAt: created,
		UpdatedAt: issue.UpdatedAt,
		Pending:   pending,
	}
}

func deriveUserID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
