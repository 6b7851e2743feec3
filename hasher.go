package librarian

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

const saltLength = 16

// HashPassword derives a Credential from a password. When salt is nil a
// fresh 16 byte salt is drawn. The stored salt is base64 and the hash is
// the hex HMAC-SHA512 of the password keyed by that base64 string, so the
// output is deterministic for a given password and salt.
func HashPassword(password string, salt []byte) (Credential, error) {
	if len(salt) == 0 {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return Credential{}, errors.Wrap(err, errors.CategoryInternal, "failed to generate password salt")
		}
	}

	encoded := base64.StdEncoding.EncodeToString(salt)

	return Credential{
		Hash: hmacDigest(password, encoded),
		Salt: encoded,
	}, nil
}

// VerifyPassword reports whether password matches cred. It is false
// whenever hash or salt is missing. The comparison is constant time even
// though the digests are not secret, to keep verification timing flat.
func VerifyPassword(cred Credential, password string) bool {
	if cred.IsZero() {
		return false
	}

	computed := hmacDigest(password, cred.Salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(cred.Hash)) == 1
}

func hmacDigest(password, encodedSalt string) string {
	mac := hmac.New(sha512.New, []byte(encodedSalt))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
