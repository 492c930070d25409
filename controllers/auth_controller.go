package controllers

import (
	"log"
	"net/http"

	"school_library_backend/app"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Login verifies the credentials, issues the session cookie and appends a
// login audit row with the best-effort client IP.
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil || !u.CheckPassword(in.Password) {
		// 不区分“无此用户”和“密码错误”
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid email or password"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 审计失败不阻塞登录
	if _, err := ac.Repo.RecordLogin(c.Request.Context(), u.ID, c.ClientIP()); err != nil {
		log.Printf("record login for %s: %v", u.ID, err)
	}

	c.JSON(http.StatusOK, app.H{
		"id":        u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"role":      u.RoleName(),
	})
}

// Logout drops the session, clears the cookie and closes the most recent
// open audit row for the user.
func (ac *AuthController) Logout(c *gin.Context) {
	uid := app.UserID(c)

	if ck, err := c.Request.Cookie(app.SessionCookie); err == nil && ck.Value != "" {
		_ = ac.Sessions.Delete(c.Request.Context(), ck.Value)
	}
	ac.clearSessionCookie(c.Writer)

	if uid != "" {
		_ = ac.Repo.RecordLogout(c.Request.Context(), uid)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AuthController) WhoAmI(c *gin.Context) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"id":        u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"role":      u.RoleName(),
	})
}
