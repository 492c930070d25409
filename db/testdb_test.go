package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"school_library_backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(dir, "library.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedUser(t *testing.T, r *Repo, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:               uuid.NewString(),
		Email:            email,
		FirstName:        "Test",
		LastName:         "User",
		Role:             role,
		RegistrationDate: time.Now().UTC(),
	}
	require.NoError(t, u.SetPassword("Passw0rd"))
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedBook(t *testing.T, r *Repo, inventoryNumber, title, author string) *models.Book {
	t.Helper()
	b := &models.Book{
		InventoryNumber: inventoryNumber,
		Title:           title,
		Author:          author,
		DateAdded:       time.Now().UTC(),
		IsAvailable:     true,
	}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}
