// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model. The one-review-per-(business, reviewer) invariant is enforced by
// services.ReviewService at write time; this layer only answers existence
// queries and performs the CRUD.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// ReviewFilters narrows the review listing.
type ReviewFilters struct {
	BusinessUserID string
	ReviewerID     string
	// Ordering is one of: updated_at, -updated_at, rating, -rating.
	// Unknown or empty values fall back to -updated_at.
	Ordering string
}

var reviewOrderClause = map[string]string{
	"updated_at":  "updated_at asc",
	"-updated_at": "updated_at desc",
	"rating":      "rating asc",
	"-rating":     "rating desc",
}

// CreateReview inserts a new Review row.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetReview fetches a single review by ID, or ErrNotFound if missing.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ReviewExists reports whether the reviewer already reviewed this business.
func ReviewExists(ctx context.Context, db *gorm.DB, businessUserID, reviewerID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("business_user_id = ? AND reviewer_id = ?", businessUserID, reviewerID).
		Count(&total).Error
	return total > 0, err
}

// UpdateReviewFields applies a partial update to a review row.
func UpdateReviewFields(ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
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

// DeleteReview removes a review row. Returns ErrNotFound when no row was
// deleted.
func DeleteReview(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReviews returns reviews matching the filters, ordered per f.Ordering.
func ListReviews(ctx context.Context, db *gorm.DB, f ReviewFilters) ([]domain.Review, error) {
	clause, ok := reviewOrderClause[f.Ordering]
	if !ok {
		clause = reviewOrderClause["-updated_at"]
	}
	q := db.WithContext(ctx).Model(&domain.Review{})
	if f.BusinessUserID != "" {
		q = q.Where("business_user_id = ?", f.BusinessUserID)
	}
	if f.ReviewerID != "" {
		q = q.Where("reviewer_id = ?", f.ReviewerID)
	}
	var out []domain.Review
	err := q.Order(clause).Find(&out).Error
	return out, err
}
