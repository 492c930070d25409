package models

import "time"

const BorrowingTable = "sl_borrowings"

type Borrowing struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index;not null" json:"bookId"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	BorrowDate time.Time  `gorm:"index;not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"not null" json:"dueDate"`
	ReturnDate *time.Time `gorm:"index" json:"returnDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Borrowing) TableName() string { return BorrowingTable }

// IsReturned reports whether the loan has been closed.
func (b *Borrowing) IsReturned() bool { return b.ReturnDate != nil }
