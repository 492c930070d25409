package db

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrBookUnavailable rejects a checkout of a book with an open borrowing.
	ErrBookUnavailable = errors.New("book already borrowed")
	// ErrUnknownBook / ErrUnknownUser reject a borrowing whose references
	// do not resolve.
	ErrUnknownBook = errors.New("book does not exist")
	ErrUnknownUser = errors.New("user does not exist")
	// ErrEmailTaken rejects account creation for an email already in use.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrConflict surfaces a concurrent write that the caller may retry
	// after re-reading state.
	ErrConflict = errors.New("conflicting concurrent update")
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// lockForUpdate applies a row lock on dialects that support it. The sqlite
// driver used in tests runs the same statements without the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// matchesAny reports whether q is a case-insensitive substring of any field.
// An empty q matches everything, so list(q="") equals an unfiltered list.
func matchesAny(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// dateForms renders a date the way the search box accepts it:
// "2.1", "02.01" and "02.01.2006".
func dateForms(t time.Time) []string {
	if t.IsZero() {
		return nil
	}
	return []string{t.Format("2.1"), t.Format("02.01"), t.Format("02.01.2006")}
}

func optionalDateForms(t *time.Time) []string {
	if t == nil {
		return nil
	}
	return dateForms(*t)
}

func priceString(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
