package models

import "time"

const BookTable = "sl_books"

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InventoryNumber string    `gorm:"size:120;uniqueIndex;not null" json:"inventoryNumber"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Author          string    `gorm:"size:255;not null" json:"author"`
	ISBN            string    `gorm:"size:32" json:"isbn"`
	Genre           string    `gorm:"size:120" json:"genre"`
	Publisher       string    `gorm:"size:255" json:"publisher"`
	PublicationYear int       `json:"publicationYear"`
	Price           float64   `gorm:"type:numeric(10,2)" json:"price"`
	DateAdded       time.Time `json:"dateAdded"`
	IsAvailable     bool      `gorm:"not null;default:true" json:"isAvailable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return BookTable }
