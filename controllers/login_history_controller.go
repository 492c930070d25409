package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"school_library_backend/app"
	"school_library_backend/db"

	"github.com/gin-gonic/gin"
)

type LoginHistoryController struct{ *Srv }

func NewLoginHistoryController(s *Srv) *LoginHistoryController {
	return &LoginHistoryController{Srv: s}
}

func (lc *LoginHistoryController) ListHistory(c *gin.Context) {
	rows, err := lc.Repo.ListLoginHistory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"history": rows})
}

func (lc *LoginHistoryController) DeleteEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid entry id"})
		return
	}
	if err := lc.Repo.DeleteLoginHistoryEntry(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (lc *LoginHistoryController) ClearHistory(c *gin.Context) {
	if err := lc.Repo.ClearLoginHistory(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
