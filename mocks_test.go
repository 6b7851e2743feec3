package librarian_test

import (
	"context"
	"database/sql"

	librarian "github.com/goliatone/go-librarian"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUsers implements librarian.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*librarian.User, error) {
	args := m.Called(ctx, email, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id uuid.UUID) (*librarian.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) ListVerified(ctx context.Context) ([]*librarian.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*librarian.User), args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *librarian.User) (*librarian.User, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *librarian.User) (*librarian.User, error) {
	args := m.Called(ctx, tx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) SaveOTP(ctx context.Context, id uuid.UUID, otp *librarian.OtpRecord) (*librarian.User, error) {
	args := m.Called(ctx, id, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) SaveOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, otp *librarian.OtpRecord) (*librarian.User, error) {
	args := m.Called(ctx, tx, id, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) ConsumeOTP(ctx context.Context, id uuid.UUID, pending *librarian.Credential, markVerified bool) (*librarian.User, error) {
	args := m.Called(ctx, id, pending, markVerified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) ConsumeOTPTx(ctx context.Context, tx bun.IDB, id uuid.UUID, pending *librarian.Credential, markVerified bool) (*librarian.User, error) {
	args := m.Called(ctx, tx, id, pending, markVerified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.User), args.Error(1)
}

func (m *MockUsers) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBooks implements librarian.Books
type MockBooks struct {
	mock.Mock
}

func (m *MockBooks) List(ctx context.Context, filters librarian.BookFilters) ([]*librarian.Book, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*librarian.Book), args.Int(1), args.Error(2)
}

func (m *MockBooks) GetByID(ctx context.Context, id uuid.UUID) (*librarian.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.Book), args.Error(1)
}

func (m *MockBooks) Create(ctx context.Context, record *librarian.Book) (*librarian.Book, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.Book), args.Error(1)
}

func (m *MockBooks) Update(ctx context.Context, record *librarian.Book) (*librarian.Book, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.Book), args.Error(1)
}

func (m *MockBooks) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepositoryManager implements librarian.RepositoryManager around the
// repository mocks; transactions run the callback inline.
type MockRepositoryManager struct {
	users librarian.Users
	books librarian.Books
}

func NewMockRepositoryManager(users librarian.Users, books librarian.Books) *MockRepositoryManager {
	return &MockRepositoryManager{users: users, books: books}
}

func (m *MockRepositoryManager) Users() librarian.Users { return m.users }

func (m *MockRepositoryManager) Books() librarian.Books { return m.books }

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

// MockMailer implements librarian.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, template string, data map[string]any) error {
	args := m.Called(ctx, to, subject, template, data)
	return args.Error(0)
}

// MockTokenService implements librarian.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssuePair(uid, email string) (*librarian.TokenPair, error) {
	args := m.Called(uid, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.TokenPair), args.Error(1)
}

func (m *MockTokenService) Refresh(uid, email, presentedToken string) (*librarian.TokenPair, error) {
	args := m.Called(uid, email, presentedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.TokenPair), args.Error(1)
}

func (m *MockTokenService) Verify(tokenString string) (*librarian.SessionClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*librarian.SessionClaims), args.Error(1)
}

// MockNotifier implements librarian.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BookCreated(book *librarian.Book, addedBy uuid.UUID) {
	m.Called(book, addedBy)
}
