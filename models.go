package librarian

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Credential is the salted-hash representation of a password. Immutable
// once created; replaced wholesale on password change.
type Credential struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// IsZero reports whether either half of the credential is missing.
// Verification never succeeds against a zero credential.
func (c Credential) IsZero() bool {
	return c.Hash == "" || c.Salt == ""
}

// OtpType tags an OTP record with the flow that requested it
type OtpType = string

const (
	OtpTypeRegister       OtpType = "register"
	OtpTypeForgotPassword OtpType = "forgot-password"
)

// OtpRecord is the pending one-time-code state stored on a user. Pending is
// the pending-change union: nil means no change, non-nil is the credential
// promoted to active when the code verifies.
//
// UpdatedAt is refreshed on every resend, which extends the 5 minute reuse
// window each time, while the 10 minute absolute expiry is judged against
// CreatedAt. Both fields and both checks are kept as-is.
type OtpRecord struct {
	Code      int         `json:"code"`
	Type      OtpType     `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Pending   *Credential `json:"pending,omitempty"`
}

// Value stores the record as a JSON column
func (o *OtpRecord) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

// Scan loads the record from its JSON column
func (o *OtpRecord) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("otp record: unsupported scan type %T", src)
	}
}

// User is the identity model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	PasswordSalt  string     `bun:"password_salt" json:"-"`
	Verified      bool       `bun:"is_verified" json:"is_verified"`
	Otp           *OtpRecord `bun:"otp_data,nullzero" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Credential returns the active stored credential
func (u *User) Credential() Credential {
	return Credential{Hash: u.PasswordHash, Salt: u.PasswordSalt}
}

// Book is the catalog model
type Book struct {
	bun.BaseModel `bun:"table:books,alias:bk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Author        string     `bun:"author,notnull" json:"author,omitempty"`
	PDFURL        string     `bun:"pdf_url,notnull" json:"pdf_url,omitempty"`
	PublishedDate *time.Time `bun:"published_date,notnull" json:"published_date,omitempty"`
	Category      string     `bun:"category,notnull" json:"category,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	ISBN          string     `bun:"isbn,nullzero,unique" json:"isbn,omitempty"`
	Language      string     `bun:"language,default:'English'" json:"language,omitempty"`
	AddedBy       uuid.UUID  `bun:"added_by,type:uuid" json:"added_by,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Pagination accompanies every book listing
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalBooks  int  `json:"totalBooks"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// BookPage is a listing result
type BookPage struct {
	Books      []*Book    `json:"books"`
	Pagination Pagination `json:"pagination"`
}
