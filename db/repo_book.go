package db

import (
	"context"
	"strconv"
	"strings"

	"school_library_backend/models"
)

// Availability filter values accepted by ListBooks.
const (
	BookFilterAll       = "all"
	BookFilterAvailable = "available"
	BookFilterBorrowed  = "borrowed"
)

type BooksQuery struct {
	Q            string // 模糊搜索，匹配任意展示字段
	Availability string // "", "all", "available", "borrowed"
}

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBookByID(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &b, nil
}

// ListBooks loads the whole catalog in insertion order, narrows by the
// availability flag, then applies the free-text filter in memory. The
// filter also matches stringified year, price and date-added forms, so it
// cannot be pushed down to SQL.
func (r *Repo) ListBooks(ctx context.Context, q BooksQuery) ([]models.Book, error) {
	tx := r.DB.WithContext(ctx).Order("id ASC")
	switch q.Availability {
	case BookFilterAvailable:
		tx = tx.Where("is_available = ?", true)
	case BookFilterBorrowed:
		tx = tx.Where("is_available = ?", false)
	default:
		// all
	}

	var books []models.Book
	if err := tx.Find(&books).Error; err != nil {
		return nil, err
	}

	if strings.TrimSpace(q.Q) == "" {
		return books, nil
	}
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		fields := []string{
			b.Title, b.Author, b.ISBN, b.Genre, b.Publisher,
			b.InventoryNumber,
			strconv.Itoa(b.PublicationYear),
			priceString(b.Price),
		}
		fields = append(fields, dateForms(b.DateAdded)...)
		if matchesAny(q.Q, fields...) {
			out = append(out, b)
		}
	}
	return out, nil
}

// UpdateBook overwrites the catalog fields of an existing book. The write
// is a keyed UPDATE, never an upsert, so a row deleted since the caller
// read it reports ErrNotFound instead of being re-created. A write that
// fails mid-flight re-checks existence: a vanished row reports ErrNotFound,
// anything else surfaces as a retryable ErrConflict.
func (r *Repo) UpdateBook(ctx context.Context, b *models.Book) error {
	var existing models.Book
	if err := r.DB.WithContext(ctx).First(&existing, "id = ?", b.ID).Error; err != nil {
		return asNotFound(err)
	}

	res := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", b.ID).
		Select("*").Omit("id", "created_at").
		Updates(b)
	if res.Error != nil {
		var n int64
		if cErr := r.DB.WithContext(ctx).Model(&models.Book{}).
			Where("id = ?", b.ID).
			Count(&n).Error; cErr == nil && n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes the row regardless of open borrowings; any historical
// borrowing rows keep their book_id and become orphans.
func (r *Repo) DeleteBook(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
