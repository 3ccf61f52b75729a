package database

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/config"
	"github.com/noah-isme/educonnect-api/internal/models"
)

// SeedUsers inserts the configured accounts when the users table is empty.
// It returns the number of accounts created.
func SeedUsers(ctx context.Context, db *gorm.DB, seeds []config.SeedUser) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 || len(seeds) == 0 {
		return 0, nil
	}

	users := make([]models.User, 0, len(seeds))
	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("hash password for %s: %w", seed.Username, err)
		}
		users = append(users, models.User{
			Username: seed.Username,
			Password: string(hash),
			Role:     seed.Role,
			Name:     seed.Name,
		})
	}

	if err := db.WithContext(ctx).Create(&users).Error; err != nil {
		return 0, err
	}

	return len(users), nil
}
