package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"school_library_backend/app"
	"school_library_backend/db"

	"github.com/gin-gonic/gin"
)

type BorrowingController struct{ *Srv }

func NewBorrowingController(s *Srv) *BorrowingController { return &BorrowingController{Srv: s} }

// DefaultLoanPeriod applies when a checkout is created without a due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// 列表：非管理员只能看到自己的借阅
func (bc *BorrowingController) ListBorrowings(c *gin.Context) {
	rows, err := bc.Repo.ListBorrowings(c.Request.Context(), db.BorrowingsQuery{
		Q:             c.Query("q"),
		Status:        c.Query("status"),
		CallerID:      app.UserID(c),
		CallerIsAdmin: app.IsAdmin(c),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"borrowings": rows})
}

func (bc *BorrowingController) GetBorrowing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrowing id"})
		return
	}
	l, err := bc.Repo.FindBorrowingByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if !app.IsAdmin(c) && l.UserID != app.UserID(c) {
		c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

// 借出
func (bc *BorrowingController) CreateBorrowing(c *gin.Context) {
	var in struct {
		BookID     uint       `json:"bookId" binding:"required"`
		UserID     string     `json:"userId" binding:"required"`
		BorrowDate *time.Time `json:"borrowDate"`
		DueDate    *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	borrowDate := time.Now().UTC()
	if in.BorrowDate != nil {
		borrowDate = *in.BorrowDate
	}
	dueDate := borrowDate.Add(DefaultLoanPeriod)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	l, err := bc.Repo.CreateBorrowing(c.Request.Context(), db.CreateBorrowingInput{
		BookID:     in.BookID,
		UserID:     in.UserID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrUnknownBook), errors.Is(err, db.ErrUnknownUser):
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrBookUnavailable):
			c.JSON(http.StatusConflict, app.H{"error": "book already borrowed"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, l)
}

// 归还
func (bc *BorrowingController) ReturnBorrowing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrowing id"})
		return
	}
	l, err := bc.Repo.ReturnBorrowing(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (bc *BorrowingController) UpdateBorrowing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrowing id"})
		return
	}
	var in struct {
		BookID     uint       `json:"bookId" binding:"required"`
		UserID     string     `json:"userId" binding:"required"`
		BorrowDate time.Time  `json:"borrowDate" binding:"required"`
		DueDate    time.Time  `json:"dueDate" binding:"required"`
		ReturnDate *time.Time `json:"returnDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	l, err := bc.Repo.UpdateBorrowing(c.Request.Context(), uint(id), db.UpdateBorrowingInput{
		BookID:     in.BookID,
		UserID:     in.UserID,
		BorrowDate: in.BorrowDate,
		DueDate:    in.DueDate,
		ReturnDate: in.ReturnDate,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (bc *BorrowingController) DeleteBorrowing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrowing id"})
		return
	}
	if err := bc.Repo.DeleteBorrowing(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
