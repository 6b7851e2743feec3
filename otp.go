package librarian

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999

	// otpReuseWindow bounds code reuse on resend; judged against UpdatedAt.
	otpReuseWindow = 5 * time.Minute
	// otpAbsoluteExpiry bounds verification; judged against CreatedAt.
	otpAbsoluteExpiry = 10 * time.Minute
)

// OtpIssue is the outcome of an OTP draw
type OtpIssue struct {
	Code      int
	UpdatedAt time.Time
}

// GenerateOTP draws a 6 digit code, reusing the existing record's code when
// its UpdatedAt is still inside the reuse window. UpdatedAt is always
// refreshed to now, so repeated resends keep extending the window while the
// absolute expiry keeps counting from the record's CreatedAt.
func GenerateOTP(existing *OtpRecord, now time.Time) OtpIssue {
	if existing != nil && existing.Code != 0 && now.Sub(existing.UpdatedAt) < otpReuseWindow {
		return OtpIssue{Code: existing.Code, UpdatedAt: now}
	}

	return OtpIssue{Code: randomCode(), UpdatedAt: now}
}

func randomCode() int {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; there is no useful recovery for a login code.
		panic(err)
	}
	return otpMin + int(n.Int64())
}
