package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"school_library_backend/app"
	"school_library_backend/db"
	"school_library_backend/models"

	"github.com/gin-gonic/gin"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

type bookInput struct {
	InventoryNumber string     `json:"inventoryNumber"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Genre           string     `json:"genre"`
	Publisher       string     `json:"publisher"`
	PublicationYear int        `json:"publicationYear"`
	Price           float64    `json:"price"`
	DateAdded       *time.Time `json:"dateAdded"`
	IsAvailable     *bool      `json:"isAvailable"`
}

func (in *bookInput) requiredFieldErrors() []string {
	var msgs []string
	if strings.TrimSpace(in.InventoryNumber) == "" {
		msgs = append(msgs, "inventory number is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		msgs = append(msgs, "title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		msgs = append(msgs, "author is required")
	}
	return msgs
}

// 公开目录：?q=&availability=all|available|borrowed
func (bc *BookController) ListBooks(c *gin.Context) {
	books, err := bc.Repo.ListBooks(c.Request.Context(), db.BooksQuery{
		Q:            c.Query("q"),
		Availability: c.Query("availability"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"books": books})
}

func (bc *BookController) GetBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid book id"})
		return
	}
	b, err := bc.Repo.FindBookByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (bc *BookController) CreateBook(c *gin.Context) {
	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if msgs := in.requiredFieldErrors(); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, app.H{"errors": msgs})
		return
	}

	dateAdded := time.Now().UTC()
	if in.DateAdded != nil {
		dateAdded = *in.DateAdded
	}
	// 默认可借
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	b := &models.Book{
		InventoryNumber: in.InventoryNumber,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		Price:           in.Price,
		DateAdded:       dateAdded,
		IsAvailable:     available,
	}
	if err := bc.Repo.CreateBook(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (bc *BookController) UpdateBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid book id"})
		return
	}
	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if msgs := in.requiredFieldErrors(); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, app.H{"errors": msgs})
		return
	}

	existing, err := bc.Repo.FindBookByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	existing.InventoryNumber = in.InventoryNumber
	existing.Title = in.Title
	existing.Author = in.Author
	existing.ISBN = in.ISBN
	existing.Genre = in.Genre
	existing.Publisher = in.Publisher
	existing.PublicationYear = in.PublicationYear
	existing.Price = in.Price
	if in.DateAdded != nil {
		existing.DateAdded = *in.DateAdded
	}
	if in.IsAvailable != nil {
		existing.IsAvailable = *in.IsAvailable
	}

	if err := bc.Repo.UpdateBook(c.Request.Context(), existing); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
		case errors.Is(err, db.ErrConflict):
			c.JSON(http.StatusConflict, app.H{"error": "book was modified concurrently, retry"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (bc *BookController) DeleteBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid book id"})
		return
	}
	if err := bc.Repo.DeleteBook(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
