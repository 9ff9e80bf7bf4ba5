// Package services – ProfileService
//
// This file implements profile reads and the owner-only partial update.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"
)

// ProfileUpdateInput carries a partial profile update; nil fields are left
// untouched. The profile type is deliberately not updatable here: switching
// between customer and business is an administrative action.
type ProfileUpdateInput struct {
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
	Avatar       *string
}

// ProfileService implements profile use-cases.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// Get returns a profile by its ID, or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := repo.GetProfile(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to a profile owned by requesterID.
func (s *ProfileService) Update(ctx context.Context, requesterID, id string, in ProfileUpdateInput) (*domain.Profile, error) {
	p, err := repo.GetProfile(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if p.UserID != requesterID {
		return nil, ErrNotProfileOwner
	}

	fields := map[string]interface{}{}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Tel != nil {
		fields["tel"] = *in.Tel
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.WorkingHours != nil {
		fields["working_hours"] = *in.WorkingHours
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if err := repo.UpdateProfileFields(ctx, s.DB, id, fields); err != nil {
		return nil, err
	}
	return repo.GetProfile(ctx, s.DB, id)
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return repo.ListProfiles(ctx, s.DB)
}

// ListByType returns all profiles of the given type.
func (s *ProfileService) ListByType(ctx context.Context, profileType string) ([]domain.Profile, error) {
	if profileType != domain.ProfileTypeCustomer && profileType != domain.ProfileTypeBusiness {
		return nil, invalidf("type", "must be customer or business")
	}
	return repo.ListProfilesByType(ctx, s.DB, profileType)
}
