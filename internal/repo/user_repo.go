// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and
// their one-to-one profiles.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// CreateUser inserts a new User row.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

// GetUser fetches a user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a user by unique username, or ErrNotFound.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether a user with this username already exists.
func UsernameTaken(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&total).Error
	return total > 0, err
}

// EmailTaken reports whether a user with this email already exists.
func EmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&total).Error
	return total > 0, err
}

//
// Profiles
//

// CreateProfile inserts a new Profile row.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).Create(p).Error
}

// GetProfile fetches a profile by its own ID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByUserID fetches the profile owned by userID, or ErrNotFound.
func GetProfileByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfileFields applies a partial update to a profile row.
func UpdateProfileFields(ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListProfiles returns all profiles, most recently updated first.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	var out []domain.Profile
	err := db.WithContext(ctx).Order("updated_at desc").Find(&out).Error
	return out, err
}

// ListProfilesByType returns all profiles of the given type
// ("customer" or "business"), most recently updated first.
func ListProfilesByType(ctx context.Context, db *gorm.DB, profileType string) ([]domain.Profile, error) {
	var out []domain.Profile
	err := db.WithContext(ctx).
		Where("type = ?", profileType).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}
