package db

import (
	"context"
	"errors"
	"strings"

	"school_library_backend/models"
)

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &u, nil
}

// CreateUser inserts the account, rejecting an email that already has one.
func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	if _, err := r.FindUserByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

// UpdateUser writes a keyed UPDATE, never an upsert: an account deleted
// since the caller read it reports ErrNotFound instead of coming back.
func (r *Repo) UpdateUser(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", u.ID).
		Select("*").Omit("id", "created_at").
		Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the account only. Historical borrowing and login
// history rows keep their user_id and are tolerated as orphans.
func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, err
}

// ListUsers loads every account and filters in memory: name, email, phone,
// formatted birth/registration dates and the resolved role name all count
// as matches.
func (r *Repo) ListUsers(ctx context.Context, q string) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return users, nil
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		fields := []string{u.FirstName, u.LastName, u.Email, u.Phone, u.RoleName()}
		fields = append(fields, dateForms(u.BirthDate)...)
		fields = append(fields, dateForms(u.RegistrationDate)...)
		if matchesAny(q, fields...) {
			out = append(out, u)
		}
	}
	return out, nil
}
