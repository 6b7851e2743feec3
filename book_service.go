package librarian

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	defaultBookPage  = 1
	defaultBookLimit = 10
	maxBookLimit     = 100
)

// CreateBookInput carries the fields a new catalog entry requires
type CreateBookInput struct {
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	PDFURL        string     `json:"pdf_url"`
	PublishedDate *time.Time `json:"published_date"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	ISBN          string     `json:"isbn"`
	Language      string     `json:"language"`
}

// UpdateBookInput carries a partial update; nil fields are left untouched
type UpdateBookInput struct {
	Title         *string    `json:"title"`
	Author        *string    `json:"author"`
	PDFURL        *string    `json:"pdf_url"`
	PublishedDate *time.Time `json:"published_date"`
	Category      *string    `json:"category"`
	Description   *string    `json:"description"`
	ISBN          *string    `json:"isbn"`
	Language      *string    `json:"language"`
}

// DeleteAck is the payload for a successful delete
type DeleteAck struct {
	Message string `json:"message"`
}

// Notifier receives the post-commit handoff when a book is created
type Notifier interface {
	BookCreated(book *Book, addedBy uuid.UUID)
}

// BookService is the catalog CRUD layer. Creation hands the new record to
// the notifier after the write commits; notification failures never fail
// the request.
type BookService struct {
	repo   RepositoryManager
	notify Notifier
	logger Logger
}

var _ BookOperations = (*BookService)(nil)

func NewBookService(repo RepositoryManager, notify Notifier, logger Logger) *BookService {
	if logger == nil {
		logger = defLogger{}
	}
	if notify == nil {
		notify = noopNotifier{}
	}
	return &BookService{
		repo:   repo,
		notify: notify,
		logger: logger,
	}
}

// List pages through the catalog with the given filters
func (s *BookService) List(ctx context.Context, filters BookFilters) (*BookPage, error) {
	if filters.Page < 1 {
		filters.Page = defaultBookPage
	}
	if filters.Limit < 1 {
		filters.Limit = defaultBookLimit
	}
	if filters.Limit > maxBookLimit {
		filters.Limit = maxBookLimit
	}

	records, count, err := s.repo.Books().List(ctx, filters)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list books")
	}

	totalPages := count / filters.Limit
	if count%filters.Limit != 0 {
		totalPages++
	}

	if records == nil {
		records = []*Book{}
	}

	return &BookPage{
		Books: records,
		Pagination: Pagination{
			CurrentPage: filters.Page,
			TotalPages:  totalPages,
			TotalBooks:  count,
			Limit:       filters.Limit,
			HasNext:     filters.Page*filters.Limit < count,
			HasPrev:     filters.Page > 1,
		},
	}, nil
}

// Book fetches a single catalog entry
func (s *BookService) Book(ctx context.Context, id uuid.UUID) (*Book, error) {
	record, err := s.repo.Books().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load book")
	}
	return record, nil
}

// Create persists a new entry and hands it to the notification fan-out
func (s *BookService) Create(ctx context.Context, input CreateBookInput, userID uuid.UUID) (*Book, error) {
	record := &Book{
		Title:         input.Title,
		Author:        input.Author,
		PDFURL:        input.PDFURL,
		PublishedDate: input.PublishedDate,
		Category:      input.Category,
		Description:   input.Description,
		ISBN:          input.ISBN,
		Language:      input.Language,
		AddedBy:       userID,
	}
	if record.Language == "" {
		record.Language = "English"
	}

	record, err := s.repo.Books().Create(ctx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create book").
			WithCode(goerrors.CodeBadRequest)
	}

	s.notify.BookCreated(record, userID)

	return record, nil
}

// Update applies a partial update to an existing entry
func (s *BookService) Update(ctx context.Context, id uuid.UUID, input UpdateBookInput, userID uuid.UUID) (*Book, error) {
	record, err := s.Book(ctx, id)
	if err != nil {
		return nil, err
	}

	applyBookUpdate(record, input)

	record, err = s.repo.Books().Update(ctx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update book")
	}

	return record, nil
}

// Delete soft deletes an entry
func (s *BookService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*DeleteAck, error) {
	if _, err := s.Book(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.Books().SoftDelete(ctx, id); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete book")
	}

	return &DeleteAck{Message: "Book deleted successfully"}, nil
}

func applyBookUpdate(record *Book, input UpdateBookInput) {
	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.Author != nil {
		record.Author = *input.Author
	}
	if input.PDFURL != nil {
		record.PDFURL = *input.PDFURL
	}
	if input.PublishedDate != nil {
		record.PublishedDate = input.PublishedDate
	}
	if input.Category != nil {
		record.Category = *input.Category
	}
	if input.Description != nil {
		record.Description = *input.Description
	}
	if input.ISBN != nil {
		record.ISBN = *input.ISBN
	}
	if input.Language != nil {
		record.Language = *input.Language
	}
}

type noopNotifier struct{}

func (noopNotifier) BookCreated(*Book, uuid.UUID) {}
