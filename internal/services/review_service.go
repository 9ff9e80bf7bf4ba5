// Package services – ReviewService
//
// This file implements the ReviewService, which governs customer ratings of
// business users. It enforces the one-review-per-(business, reviewer)
// invariant at write time inside the create transaction, checks role and
// ownership rules, and validates the rating range. Service-level errors
// (ErrDuplicateReview, ErrNotReviewer, …) are returned for predictable cases
// so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"
)

// ReviewUpdateInput carries a partial review update; nil fields are left
// untouched.
type ReviewUpdateInput struct {
	Rating      *int
	Description *string
}

// ReviewService implements the review use-cases.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// Create records a review of businessUserID by reviewerID.
//
// Semantics and validation:
//   - The reviewer must hold a customer profile.
//   - businessUserID must belong to an existing business profile.
//   - rating must be an integer in [1,5].
//   - At most one review may exist per (business, reviewer) pair; the
//     existence check and the insert run in one transaction so concurrent
//     duplicates cannot slip through the gap.
func (s *ReviewService) Create(ctx context.Context, reviewerID, businessUserID string, rating int, description string) (*domain.Review, error) {
	reviewer, err := repo.GetProfileByUserID(ctx, s.DB, reviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if !canWriteReview(reviewer) {
		return nil, ErrCustomerAccountRequired
	}

	business, err := repo.GetProfileByUserID(ctx, s.DB, businessUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if business.Type != domain.ProfileTypeBusiness {
		return nil, invalidf("business_user_id", "does not refer to a business account")
	}
	if rating < 1 || rating > 5 {
		return nil, invalidf("rating", "must be between 1 and 5")
	}

	r := &domain.Review{
		ID:             uuid.NewString(),
		BusinessUserID: businessUserID,
		ReviewerID:     reviewerID,
		Rating:         rating,
		Description:    strings.TrimSpace(description),
		CreatedAt:      time.Now().UTC(),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.ReviewExists(ctx, tx, businessUserID, reviewerID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateReview
		}
		return repo.CreateReview(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies a partial update to a review authored by requesterID.
func (s *ReviewService) Update(ctx context.Context, requesterID, reviewID string, in ReviewUpdateInput) (*domain.Review, error) {
	r, err := repo.GetReview(ctx, s.DB, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if r.ReviewerID != requesterID {
		return nil, ErrNotReviewer
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, invalidf("rating", "must be between 1 and 5")
	}

	fields := map[string]interface{}{}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if err := repo.UpdateReviewFields(ctx, s.DB, reviewID, fields); err != nil {
		return nil, err
	}
	return repo.GetReview(ctx, s.DB, reviewID)
}

// Delete removes a review authored by requesterID.
func (s *ReviewService) Delete(ctx context.Context, requesterID, reviewID string) error {
	r, err := repo.GetReview(ctx, s.DB, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if r.ReviewerID != requesterID {
		return ErrNotReviewer
	}
	return repo.DeleteReview(ctx, s.DB, reviewID)
}

// List returns reviews matching the filters, most recently updated first
// unless another ordering is requested.
func (s *ReviewService) List(ctx context.Context, f repo.ReviewFilters) ([]domain.Review, error) {
	return repo.ListReviews(ctx, s.DB, f)
}
