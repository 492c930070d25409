package models

import (
	"errors"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const UserTable = "sl_users"

// Roles form a closed set; a user holds at most one.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"

	// NoRole is the display value for users without an assigned role.
	NoRole = "No Role"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher || role == RoleStudent
}

type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	FirstName string    `gorm:"size:120;not null" json:"firstName"`
	LastName  string    `gorm:"size:120;not null" json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	Role      string    `gorm:"size:20" json:"role"`

	RegistrationDate time.Time `json:"registrationDate"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

// RoleName returns the assigned role or the NoRole sentinel.
func (u *User) RoleName() string {
	if u.Role == "" {
		return NoRole
	}
	return u.Role
}

func (u *User) SetPassword(plain string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(h)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// ValidatePassword applies the account password policy: at least six
// characters with an uppercase letter, a lowercase letter and a digit.
// Every violated rule is reported, not just the first.
func ValidatePassword(plain string) []error {
	var errs []error
	if utf8.RuneCountInString(plain) < 6 {
		errs = append(errs, errors.New("password must be at least 6 characters long"))
	}
	var upper, lower, digit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		errs = append(errs, errors.New("password must contain an uppercase letter"))
	}
	if !lower {
		errs = append(errs, errors.New("password must contain a lowercase letter"))
	}
	if !digit {
		errs = append(errs, errors.New("password must contain a digit"))
	}
	return errs
}
