// seed-admin creates or updates the ops console user. Admin users (role 'A')
// may sync any tenant and call the /internal/ops endpoints.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
	"bitbucket.org/valisto/valisto_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "valistoAdmin"
	defaultAdminName     = "Valisto Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	ctx = utils.SetUsernameInContext(ctx, username)
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("username = ?", username).Take(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"password": hashed,
			"role":     models.UserRoleAdmin,
		}
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
			os.Exit(1)
		}
		// Drop the cached copy so the new password takes effect immediately.
		_ = existing.RemoveInstanceRedis()
		fmt.Printf("updated admin user %q (id=%d)\n", username, existing.ID)
	case err == gorm.ErrRecordNotFound:
		active := true
		admin := models.User{
			Username: username,
			Name:     defaultAdminName,
			Password: string(hashed),
			Role:     models.UserRoleAdmin,
			IsActive: &active,
		}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %q (id=%d)\n", username, admin.ID)
	default:
		fmt.Fprintf(os.Stderr, "failed to lookup admin user: %v\n", err)
		os.Exit(1)
	}
}
