package db

import (
	"context"
	"errors"
	"time"

	"school_library_backend/models"

	"gorm.io/gorm"
)

// BorrowingRow is the joined read model for borrowing listings: the loan
// plus the book and borrower summary fields the search box matches on.
// Books and users are fetched explicitly by id, no lazy loading.
type BorrowingRow struct {
	models.Borrowing

	BookTitle           string `json:"bookTitle"`
	BookAuthor          string `json:"bookAuthor"`
	BookInventoryNumber string `json:"bookInventoryNumber"`

	BorrowerFirstName string `json:"borrowerFirstName"`
	BorrowerLastName  string `json:"borrowerLastName"`
	BorrowerEmail     string `json:"borrowerEmail"`
}

// Status filter values accepted by ListBorrowings.
const (
	BorrowingFilterAll         = "all"
	BorrowingFilterReturned    = "returned"
	BorrowingFilterNotReturned = "notReturned"
)

type BorrowingsQuery struct {
	Q      string
	Status string // "", "all", "returned", "notReturned"

	// CallerID scopes the result to one borrower unless CallerIsAdmin.
	CallerID      string
	CallerIsAdmin bool
}

type CreateBorrowingInput struct {
	BookID     uint
	UserID     string
	BorrowDate time.Time
	DueDate    time.Time
}

// CreateBorrowing checks the book out: inside one transaction the book row
// is locked, availability re-checked, the borrowing created and the flag
// flipped. Two concurrent checkouts of the same book serialize on the row
// lock; the partial unique index backs this up at the store level.
func (r *Repo) CreateBorrowing(ctx context.Context, in CreateBorrowingInput) (*models.Borrowing, error) {
	var borrowing *models.Borrowing
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownUser
			}
			return err
		}

		// 1) 锁住这本书
		var b models.Book
		if err := lockForUpdate(tx).First(&b, "id = ?", in.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBook
			}
			return err
		}

		// 2) 防并发：已借出或存在未归还记录则拒绝
		if !b.IsAvailable {
			return ErrBookUnavailable
		}
		var n int64
		if err := tx.Model(&models.Borrowing{}).
			Where("book_id = ? AND return_date IS NULL", in.BookID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrBookUnavailable
		}

		if err := tx.Model(&models.Book{}).
			Where("id = ? AND is_available = ?", b.ID, true).
			Update("is_available", false).Error; err != nil {
			return err
		}

		l := &models.Borrowing{
			BookID:     in.BookID,
			UserID:     in.UserID,
			BorrowDate: in.BorrowDate,
			DueDate:    in.DueDate,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		borrowing = l
		return nil
	})
	return borrowing, err
}

// ReturnBorrowing closes the loan and releases the book in one transaction.
// Returning an already-closed loan is a no-op that reports the row as-is.
func (r *Repo) ReturnBorrowing(ctx context.Context, id uint) (*models.Borrowing, error) {
	var l models.Borrowing
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&l, "id = ?", id).Error; err != nil {
			return asNotFound(err)
		}
		// 幂等：已归还直接返回
		if l.ReturnDate != nil {
			return nil
		}
		now := time.Now().UTC()
		l.ReturnDate = &now
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		return tx.Model(&models.Book{}).
			Where("id = ?", l.BookID).
			Update("is_available", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

type UpdateBorrowingInput struct {
	BookID     uint
	UserID     string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// UpdateBorrowing is the admin edit path. It rewrites the loan freely and
// then recomputes availability for every book it touched, so an edit can
// never leave a flag contradicting the open-borrowing state.
func (r *Repo) UpdateBorrowing(ctx context.Context, id uint, in UpdateBorrowingInput) (*models.Borrowing, error) {
	var l models.Borrowing
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&l, "id = ?", id).Error; err != nil {
			return asNotFound(err)
		}
		oldBookID := l.BookID

		l.BookID = in.BookID
		l.UserID = in.UserID
		l.BorrowDate = in.BorrowDate
		l.DueDate = in.DueDate
		l.ReturnDate = in.ReturnDate
		if err := tx.Save(&l).Error; err != nil {
			return err
		}

		if err := recomputeBookAvailability(tx, in.BookID); err != nil {
			return err
		}
		if oldBookID != in.BookID {
			return recomputeBookAvailability(tx, oldBookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteBorrowing removes the loan and recomputes the book's flag, so
// deleting an open loan frees the book again.
func (r *Repo) DeleteBorrowing(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Borrowing
		if err := lockForUpdate(tx).First(&l, "id = ?", id).Error; err != nil {
			return asNotFound(err)
		}
		if err := tx.Delete(&models.Borrowing{}, "id = ?", id).Error; err != nil {
			return err
		}
		return recomputeBookAvailability(tx, l.BookID)
	})
}

// recomputeBookAvailability derives the flag from live open-borrowing
// existence. A book that has been deleted in the meantime is skipped.
func recomputeBookAvailability(tx *gorm.DB, bookID uint) error {
	var open int64
	if err := tx.Model(&models.Borrowing{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&open).Error; err != nil {
		return err
	}
	res := tx.Model(&models.Book{}).
		Where("id = ?", bookID).
		Update("is_available", open == 0)
	return res.Error
}

func (r *Repo) FindBorrowingByID(ctx context.Context, id uint) (*models.Borrowing, error) {
	var l models.Borrowing
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &l, nil
}

// ListBorrowings returns joined rows in insertion order. Non-admin callers
// are restricted to their own loans before any other filter applies. The
// free-text filter runs in memory because it matches formatted dates and
// joined book/borrower fields.
func (r *Repo) ListBorrowings(ctx context.Context, q BorrowingsQuery) ([]BorrowingRow, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Borrowing{}).Order("id ASC")
	if !q.CallerIsAdmin {
		tx = tx.Where("user_id = ?", q.CallerID)
	}
	switch q.Status {
	case BorrowingFilterReturned:
		tx = tx.Where("return_date IS NOT NULL")
	case BorrowingFilterNotReturned:
		tx = tx.Where("return_date IS NULL")
	default:
		// all
	}

	var loans []models.Borrowing
	if err := tx.Find(&loans).Error; err != nil {
		return nil, err
	}

	books, users, err := r.fetchBorrowingRefs(ctx, loans)
	if err != nil {
		return nil, err
	}

	rows := make([]BorrowingRow, 0, len(loans))
	for _, l := range loans {
		row := BorrowingRow{Borrowing: l}
		if b, ok := books[l.BookID]; ok {
			row.BookTitle = b.Title
			row.BookAuthor = b.Author
			row.BookInventoryNumber = b.InventoryNumber
		}
		if u, ok := users[l.UserID]; ok {
			row.BorrowerFirstName = u.FirstName
			row.BorrowerLastName = u.LastName
			row.BorrowerEmail = u.Email
		}

		fields := []string{
			row.BookTitle, row.BookAuthor, row.BookInventoryNumber,
			row.BorrowerFirstName, row.BorrowerLastName, row.BorrowerEmail,
		}
		fields = append(fields, dateForms(l.BorrowDate)...)
		fields = append(fields, dateForms(l.DueDate)...)
		fields = append(fields, optionalDateForms(l.ReturnDate)...)
		if matchesAny(q.Q, fields...) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// fetchBorrowingRefs batch-loads the referenced books and users. Orphaned
// references simply produce no entry; the listing leaves those fields blank.
func (r *Repo) fetchBorrowingRefs(ctx context.Context, loans []models.Borrowing) (map[uint]models.Book, map[string]models.User, error) {
	bookIDs := make([]uint, 0, len(loans))
	userIDs := make([]string, 0, len(loans))
	seenBook := map[uint]bool{}
	seenUser := map[string]bool{}
	for _, l := range loans {
		if !seenBook[l.BookID] {
			seenBook[l.BookID] = true
			bookIDs = append(bookIDs, l.BookID)
		}
		if !seenUser[l.UserID] {
			seenUser[l.UserID] = true
			userIDs = append(userIDs, l.UserID)
		}
	}

	books := map[uint]models.Book{}
	if len(bookIDs) > 0 {
		var bs []models.Book
		if err := r.DB.WithContext(ctx).Where("id IN ?", bookIDs).Find(&bs).Error; err != nil {
			return nil, nil, err
		}
		for _, b := range bs {
			books[b.ID] = b
		}
	}

	users := map[string]models.User{}
	if len(userIDs) > 0 {
		var us []models.User
		if err := r.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&us).Error; err != nil {
			return nil, nil, err
		}
		for _, u := range us {
			users[u.ID] = u
		}
	}
	return books, users, nil
}
