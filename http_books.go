package librarian

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-librarian/middleware/authware"
	"github.com/google/uuid"
)

// BookController exposes the catalog CRUD over HTTP. Every route assumes
// the bearer gate already attached a principal.
type BookController struct {
	Logger     Logger
	Books      BookOperations
	ContextKey string
}

type BookControllerOption func(*BookController) *BookController

func WithBookControllerLogger(logger Logger) BookControllerOption {
	return func(c *BookController) *BookController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewBookController(books BookOperations, opts ...BookControllerOption) *BookController {
	c := &BookController{
		Logger: defLogger{},
		Books:  books,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Books == nil {
		panic("Missing BookOperations in book controller...")
	}

	return c
}

func (a *BookController) List(c *fiber.Ctx) error {
	filters := BookFilters{
		Search:    c.Query("search"),
		Author:    c.Query("author"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.QueryInt("page"),
		Limit:     c.QueryInt("limit"),
	}

	page, err := a.Books.List(c.UserContext(), filters)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	return respondData(c, fiber.StatusOK, "success", page)
}

func (a *BookController) Show(c *fiber.Ctx) error {
	id, err := a.bookID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	record, err := a.Books.Book(c.UserContext(), id)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	return respondData(c, fiber.StatusOK, "success", record)
}

// CreateBookRequest payload
type CreateBookRequest struct {
	Title         string `json:"title" form:"title"`
	Author        string `json:"author" form:"author"`
	PDFURL        string `json:"pdf_url" form:"pdf_url"`
	PublishedDate string `json:"published_date" form:"published_date"`
	Category      string `json:"category" form:"category"`
	Description   string `json:"description" form:"description"`
	ISBN          string `json:"isbn" form:"isbn"`
	Language      string `json:"language" form:"language"`
}

// Validate will run validation rules
func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.PDFURL, validation.Required, is.URL),
		validation.Field(&r.PublishedDate, validation.Date(time.RFC3339)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.ISBN, validation.Length(0, 32)),
	)
}

func (r CreateBookRequest) toInput() CreateBookInput {
	input := CreateBookInput{
		Title:       r.Title,
		Author:      r.Author,
		PDFURL:      r.PDFURL,
		Category:    r.Category,
		Description: r.Description,
		ISBN:        r.ISBN,
		Language:    r.Language,
	}
	if r.PublishedDate != "" {
		if t, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			input.PublishedDate = &t
		}
	}
	return input
}

func (a *BookController) Create(c *fiber.Ctx) error {
	userID, err := a.principalID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	payload := new(CreateBookRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create book parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	record, err := a.Books.Create(c.UserContext(), payload.toInput(), userID)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	return respondData(c, fiber.StatusCreated, "Book created successfully", record)
}

// UpdateBookRequest payload; omitted fields are left untouched
type UpdateBookRequest struct {
	Title         *string `json:"title" form:"title"`
	Author        *string `json:"author" form:"author"`
	PDFURL        *string `json:"pdf_url" form:"pdf_url"`
	PublishedDate *string `json:"published_date" form:"published_date"`
	Category      *string `json:"category" form:"category"`
	Description   *string `json:"description" form:"description"`
	ISBN          *string `json:"isbn" form:"isbn"`
	Language      *string `json:"language" form:"language"`
}

// Validate will run validation rules
func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.PDFURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&r.PublishedDate, validation.Date(time.RFC3339)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

func (r UpdateBookRequest) toInput() UpdateBookInput {
	input := UpdateBookInput{
		Title:       r.Title,
		Author:      r.Author,
		PDFURL:      r.PDFURL,
		Category:    r.Category,
		Description: r.Description,
		ISBN:        r.ISBN,
		Language:    r.Language,
	}
	if r.PublishedDate != nil && *r.PublishedDate != "" {
		if t, err := time.Parse(time.RFC3339, *r.PublishedDate); err == nil {
			input.PublishedDate = &t
		}
	}
	return input
}

func (a *BookController) Update(c *fiber.Ctx) error {
	userID, err := a.principalID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	id, err := a.bookID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	payload := new(UpdateBookRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update book parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	record, err := a.Books.Update(c.UserContext(), id, payload.toInput(), userID)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	return respondData(c, fiber.StatusOK, "Book updated successfully", record)
}

func (a *BookController) Delete(c *fiber.Ctx) error {
	userID, err := a.principalID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	id, err := a.bookID(c)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	ack, err := a.Books.Delete(c.UserContext(), id, userID)
	if err != nil {
		return renderError(c, a.Logger, false, err)
	}

	return respondData(c, fiber.StatusOK, ack.Message, nil)
}

// bookID rejects malformed ids with the same shape a missing record gets
func (a *BookController) bookID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, ErrBookNotFound
	}
	return id, nil
}

func (a *BookController) principalID(c *fiber.Ctx) (uuid.UUID, error) {
	principal, ok := authware.PrincipalFromCtx(c, a.ContextKey)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	id, err := uuid.Parse(principal.UID)
	if err != nil {
		return uuid.Nil, ErrUserNotFound
	}

	return id, nil
}
