// app/bootstrap.go
package app

import (
	"context"
	"log"
	"time"

	"school_library_backend/db"
	"school_library_backend/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin seeds the configured admin account when no user with
// the Admin role exists yet, so a fresh install is usable immediately.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap admin check failed: %v", err)
		return
	}
	if n > 0 {
		return
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:               uuid.NewString(),
		Email:            cfg.AdminEmail,
		FirstName:        "Admin",
		LastName:         "Admin",
		Role:             models.RoleAdmin,
		RegistrationDate: now,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Printf("bootstrap admin password: %v", err)
		return
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		log.Printf("bootstrap admin create failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] No admin found, created %s", cfg.AdminEmail)
}
