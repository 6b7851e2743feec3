package librarian

import (
	"github.com/goliatone/go-errors"
)

// Business errors carry the HTTP status the boundary maps them to, matching
// the {message, code} contract the API has always exposed.
var (
	// ErrUserExists is returned when registering an already verified email
	ErrUserExists = errors.New("User already exists", errors.CategoryConflict).
			WithCode(errors.CodeBadRequest)

	// ErrUserNotFound is the generic missing-identity error
	ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)

	// ErrRegisterFirst is returned on login against an unknown or unverified email
	ErrRegisterFirst = errors.New("User not found, Please register first", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)

	// ErrInvalidPassword is returned when the password does not match the stored credential
	ErrInvalidPassword = errors.New("Invalid password", errors.CategoryAuth).
				WithCode(errors.CodeBadRequest)

	// ErrOTPNotFound means there is no pending OTP, or its type does not match
	ErrOTPNotFound = errors.New("OTP request not found", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)

	// ErrOTPExpired means the record is past its 10 minute absolute expiry
	ErrOTPExpired = errors.New("OTP has expired", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)

	// ErrOTPInvalid means the submitted code does not match
	ErrOTPInvalid = errors.New("Invalid OTP", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)

	// ErrBookNotFound is returned for absent or soft deleted books
	ErrBookNotFound = errors.New("Book not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
)

// Token errors surfaced by TokenService.Verify and mapped to 401 upstream.
var (
	ErrTokenExpired = errors.New("Authentication token expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenMalformed = errors.New("Invalid authentication token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_MALFORMED")
)
