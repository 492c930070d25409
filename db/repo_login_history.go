package db

import (
	"context"
	"errors"
	"time"

	"school_library_backend/models"

	"gorm.io/gorm"
)

// LoginHistoryRow carries the audit entry plus the user summary shown in
// the admin listing.
type LoginHistoryRow struct {
	models.LoginHistory

	UserEmail     string `json:"userEmail"`
	UserFirstName string `json:"userFirstName"`
	UserLastName  string `json:"userLastName"`
}

// RecordLogin appends an audit row at successful authentication.
func (r *Repo) RecordLogin(ctx context.Context, userID, ip string) (*models.LoginHistory, error) {
	if ip == "" {
		ip = models.UnknownIP
	}
	h := &models.LoginHistory{
		UserID:    userID,
		LoginTime: time.Now().UTC(),
		IPAddress: ip,
	}
	if err := r.DB.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// RecordLogout closes the user's most recent open audit row. Concurrent
// logins can leave several open rows; only the latest one is closed, and
// having none is not an error.
func (r *Repo) RecordLogout(ctx context.Context, userID string) error {
	var h models.LoginHistory
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND logout_time IS NULL", userID).
		Order("login_time DESC").
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&h).Update("logout_time", &now).Error
}

// ListLoginHistory returns all rows, newest login first.
func (r *Repo) ListLoginHistory(ctx context.Context) ([]LoginHistoryRow, error) {
	var entries []models.LoginHistory
	if err := r.DB.WithContext(ctx).Order("login_time DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			userIDs = append(userIDs, e.UserID)
		}
	}
	users := map[string]models.User{}
	if len(userIDs) > 0 {
		var us []models.User
		if err := r.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&us).Error; err != nil {
			return nil, err
		}
		for _, u := range us {
			users[u.ID] = u
		}
	}

	rows := make([]LoginHistoryRow, 0, len(entries))
	for _, e := range entries {
		row := LoginHistoryRow{LoginHistory: e}
		if u, ok := users[e.UserID]; ok {
			row.UserEmail = u.Email
			row.UserFirstName = u.FirstName
			row.UserLastName = u.LastName
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Repo) DeleteLoginHistoryEntry(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.LoginHistory{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ClearLoginHistory(ctx context.Context) error {
	return r.DB.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.LoginHistory{}).Error
}
