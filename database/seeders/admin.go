package seeders

import (
	"os"

	"lifeline-backend/logger"
	adminModel "lifeline-backend/models/admin"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaultAdmin creates the initial admin account if none exists.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD, with safe defaults for
// local development.
func SeedDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&adminModel.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@lifelinego.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := adminModel.Admin{
		Name:     "admin",
		Email:    email,
		Phone:    "0000000000",
		Password: string(hashed),
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Success("Seeded default admin account: " + email)
	return nil
}
