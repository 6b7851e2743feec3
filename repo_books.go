package librarian

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BookFilters narrows and pages a catalog listing
type BookFilters struct {
	Search    string
	Author    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// bookSortColumns is the allowlist for user supplied sort keys
var bookSortColumns = map[string]string{
	"published_date": "published_date",
	"title":          "title",
	"author":         "author",
	"category":       "category",
	"created_at":     "created_at",
}

type Books interface {
	List(ctx context.Context, filters BookFilters) ([]*Book, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, record *Book) (*Book, error)
	Update(ctx context.Context, record *Book) (*Book, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type books struct {
	repository.Repository[*Book]
	db *bun.DB
}

var _ Books = (*books)(nil)

func NewBooksRepository(db *bun.DB) Books {
	repo := repository.NewRepository[*Book](db, repository.ModelHandlers[*Book]{
		NewRecord: func() *Book { return &Book{} },
		GetID: func(b *Book) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Book, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
	})

	return &books{
		Repository: repo,
		db:         db,
	}
}

func (a *books) List(ctx context.Context, filters BookFilters) ([]*Book, int, error) {
	var records []*Book

	q := a.db.NewSelect().Model(&records)

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.title LIKE ?", pattern).
				WhereOr("?TableAlias.author LIKE ?", pattern)
		})
	}

	if filters.Author != "" {
		q = q.Where("?TableAlias.author LIKE ?", "%"+filters.Author+"%")
	}

	if filters.Category != "" {
		q = q.Where("?TableAlias.category = ?", filters.Category)
	}

	column, ok := bookSortColumns[filters.SortBy]
	if !ok {
		column = "published_date"
	}

	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "ASC") {
		direction = "ASC"
	}

	count, err := q.
		Order(fmt.Sprintf("%s %s", column, direction)).
		Limit(filters.Limit).
		Offset((filters.Page - 1) * filters.Limit).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, count, nil
}

func (a *books) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	record := &Book{}
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

func (a *books) Create(ctx context.Context, record *Book) (*Book, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *books) Update(ctx context.Context, record *Book) (*Book, error) {
	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(record.ID.String()))
}

func (a *books) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Book)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}
