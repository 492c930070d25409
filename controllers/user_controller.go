package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"school_library_backend/app"
	"school_library_backend/db"
	"school_library_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

type userView struct {
	models.User
	RoleName string `json:"roleName"`
}

func toUserView(u models.User) userView {
	return userView{User: u, RoleName: u.RoleName()}
}

// 管理员：用户列表（?q= 过滤姓名/邮箱/电话/日期/角色）
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	c.JSON(http.StatusOK, app.H{"users": views})
}

func (uc *UserController) GetUser(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserView(*u))
}

type userInput struct {
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	BirthDate        *time.Time `json:"birthDate"`
	Phone            string     `json:"phone"`
	RegistrationDate *time.Time `json:"registrationDate"`
	Password         string     `json:"password"`
	ConfirmPassword  string     `json:"confirmPassword"`
	Role             string     `json:"role"`
}

// passwordErrors collects every reason the supplied password pair is
// unacceptable, mirroring how credential policy failures are surfaced
// one message per violation.
func passwordErrors(password, confirm string) []string {
	if strings.TrimSpace(password) == "" {
		return []string{"password is required"}
	}
	if password != confirm {
		return []string{"passwords do not match"}
	}
	var msgs []string
	for _, err := range models.ValidatePassword(password) {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var in userInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(in.Email) == "" {
		c.JSON(http.StatusBadRequest, app.H{"errors": []string{"email is required"}})
		return
	}
	if msgs := passwordErrors(in.Password, in.ConfirmPassword); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, app.H{"errors": msgs})
		return
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:               uuid.NewString(),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Phone:            in.Phone,
		RegistrationDate: now,
	}
	if in.BirthDate != nil {
		u.BirthDate = *in.BirthDate
	}
	if in.RegistrationDate != nil {
		u.RegistrationDate = *in.RegistrationDate
	}
	// 角色必须在封闭集合内，否则不赋任何角色
	if models.ValidRole(in.Role) {
		u.Role = in.Role
	}
	if err := u.SetPassword(in.Password); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, app.H{"errors": []string{err.Error()}})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toUserView(*u))
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	var in userInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	// 资料字段总是更新
	if strings.TrimSpace(in.Email) != "" {
		u.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Phone = in.Phone
	if in.BirthDate != nil {
		u.BirthDate = *in.BirthDate
	}
	if in.RegistrationDate != nil {
		u.RegistrationDate = *in.RegistrationDate
	}

	// 角色替换：单角色覆盖
	if models.ValidRole(in.Role) {
		u.Role = in.Role
	}

	// 可选改密码
	if strings.TrimSpace(in.Password) != "" || strings.TrimSpace(in.ConfirmPassword) != "" {
		if msgs := passwordErrors(in.Password, in.ConfirmPassword); len(msgs) > 0 {
			c.JSON(http.StatusBadRequest, app.H{"errors": msgs})
			return
		}
		if err := u.SetPassword(in.Password); err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
	}

	if err := uc.Repo.UpdateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserView(*u))
}

// DeleteUser removes the account and revokes its sessions. Borrowing and
// login history rows stay behind.
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := uc.Repo.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	_ = uc.Sessions.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Profile returns the caller's own account.
func (uc *UserController) Profile(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, toUserView(*u))
}

// UpdateProfile is self-service password change only. Both fields empty is
// a no-op success.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}

	var in struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(in.Password) == "" && strings.TrimSpace(in.ConfirmPassword) == "" {
		c.JSON(http.StatusOK, app.H{"ok": true})
		return
	}
	if msgs := passwordErrors(in.Password, in.ConfirmPassword); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, app.H{"errors": msgs})
		return
	}
	if err := u.SetPassword(in.Password); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := uc.Repo.UpdateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
