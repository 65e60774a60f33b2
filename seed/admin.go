package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finnews/finnews/models"
	"github.com/finnews/finnews/utils"
)

// Admin creates an admin account for email, or promotes and re-keys the existing user.
// It reports whether a new user was created.
func Admin(ctx context.Context, db *gorm.DB, email, password, name string) (models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return models.User{}, false, errors.New("email and a password of at least 6 characters are required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, false, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash, Role: models.RoleAdmin}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return models.User{}, false, fmt.Errorf("create admin: %w", err)
		}
		return user, true, nil
	case err != nil:
		return models.User{}, false, fmt.Errorf("load user: %w", err)
	}

	user.Role = models.RoleAdmin
	user.PasswordHash = hash
	if n := strings.TrimSpace(name); n != "" {
		user.Name = n
	}
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return models.User{}, false, fmt.Errorf("promote admin: %w", err)
	}
	return user, false, nil
}
