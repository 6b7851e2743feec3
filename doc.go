// Package librarian implements a small library-management service: user
// registration and login with OTP email verification, JWT access/refresh
// token auth, and CRUD over a Book catalog with pagination and filtering.
//
// Credential lifecycle:
//   - Passwords are stored as salted HMAC-SHA512 credentials. Registration
//     parks the hashed password inside the pending OTP record; it becomes the
//     active credential only when the emailed code verifies. The same
//     pre-hash-then-confirm pattern backs the forgot-password flow, so a
//     plaintext password is never persisted while a change is pending.
//   - OTP codes are 6-digit, reused while a prior code is inside its 5-minute
//     reuse window, and rejected outright 10 minutes after creation.
//
// Tokens:
//   - TokenService signs an access/refresh pair from a single secret. The
//     refresh flow reissues only the access token; the presented refresh
//     token is passed through unchanged (no rotation).
//
// Persistence is Bun over sqlite (or any driver the DSN selects), with the
// repositories in repo_users.go and repo_books.go. HTTP controllers live in
// http_users.go / http_books.go and middleware/authware gates protected
// routes with bearer tokens.
package librarian
