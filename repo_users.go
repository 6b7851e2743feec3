package librarian

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var saveUserOTPSQL = `UPDATE "users" AS "usr"
SET
	"otp_data" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// consumeUserOTPSQL clears the pending OTP and promotes the pending
// credential in one statement, so a concurrent verify cannot observe the
// code cleared but the credential not yet active.
var consumeUserOTPSQL = `UPDATE "users" AS "usr"
SET
	"otp_data" = NULL,
	"password_hash" = COALESCE(?, "password_hash"),
	"password_salt" = COALESCE(?, "password_salt"),
	"is_verified" = (CASE WHEN ? THEN TRUE ELSE "is_verified" END),
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// WithVerifiedOnly narrows a user lookup to verified identities
func WithVerifiedOnly() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.is_verified = ?", true)
	}
}

type Users interface {
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListVerified(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	SaveOTP(ctx context.Context, id uuid.UUID, otp *OtpRecord) (*User, error)
	SaveOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, otp *OtpRecord) (*User, error)
	ConsumeOTP(ctx context.Context, id uuid.UUID, pending *Credential, markVerified bool) (*User, error)
	ConsumeOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, pending *Credential, markVerified bool) (*User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ListVerified(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.is_verified = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *users) SaveOTP(ctx context.Context, id uuid.UUID, otp *OtpRecord) (*User, error) {
	return a.SaveOTPTx(ctx, a.db, id, otp)
}

func (a *users) SaveOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, otp *OtpRecord) (*User, error) {
	payload, err := json.Marshal(otp)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode OTP record")
	}

	res, err := a.Repository.RawTx(ctx, tx, saveUserOTPSQL, string(payload), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) ConsumeOTP(ctx context.Context, id uuid.UUID, pending *Credential, markVerified bool) (*User, error) {
	return a.ConsumeOTPTx(ctx, a.db, id, pending, markVerified)
}

func (a *users) ConsumeOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, pending *Credential, markVerified bool) (*User, error) {
	var hash, salt any
	if pending != nil && !pending.IsZero() {
		hash = pending.Hash
		salt = pending.Salt
	}

	res, err := a.Repository.RawTx(ctx, tx, consumeUserOTPSQL, hash, salt, markVerified, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}
