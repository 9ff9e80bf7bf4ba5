// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the read-only platform statistics used
// by the public base-info endpoint.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// PlatformStats is a point-in-time aggregate snapshot across the whole
// marketplace. AverageRating is nil when no reviews exist.
type PlatformStats struct {
	OfferCount           int64    `json:"offer_count"`
	ReviewCount          int64    `json:"review_count"`
	AverageRating        *float64 `json:"average_rating"`
	BusinessProfileCount int64    `json:"business_profile_count"`
}

// GetPlatformStats computes the platform statistics with four lightweight
// queries. It has no write path.
func GetPlatformStats(ctx context.Context, db *gorm.DB) (*PlatformStats, error) {
	var s PlatformStats

	if err := db.WithContext(ctx).Model(&domain.Offer{}).Count(&s.OfferCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&domain.Review{}).Count(&s.ReviewCount).Error; err != nil {
		return nil, err
	}
	if s.ReviewCount > 0 {
		var row struct {
			Avg float64
		}
		if err := db.WithContext(ctx).
			Model(&domain.Review{}).
			Select("AVG(rating) AS avg").
			Scan(&row).Error; err != nil {
			return nil, err
		}
		s.AverageRating = &row.Avg
	}
	if err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("type = ?", domain.ProfileTypeBusiness).
		Count(&s.BusinessProfileCount).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
