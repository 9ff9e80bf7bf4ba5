package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

func seedStatsUser(t *testing.T, db *gorm.DB, profileType string) string {
	t.Helper()
	uid := uuid.NewString()
	if err := db.Create(&domain.User{
		ID:           uid,
		Username:     "u_" + uid[:8],
		Email:        uid[:8] + "@example.com",
		PasswordHash: "x",
	}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&domain.Profile{ID: uuid.NewString(), UserID: uid, Type: profileType}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return uid
}

func TestGetPlatformStats_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	s, err := GetPlatformStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.OfferCount != 0 || s.ReviewCount != 0 || s.BusinessProfileCount != 0 {
		t.Fatalf("counts = %+v, want zeros", s)
	}
	if s.AverageRating != nil {
		t.Fatalf("average_rating = %v, want nil with no reviews", *s.AverageRating)
	}
}

func TestGetPlatformStats_Aggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	business := seedStatsUser(t, db, domain.ProfileTypeBusiness)
	seedStatsUser(t, db, domain.ProfileTypeBusiness)
	customer := seedStatsUser(t, db, domain.ProfileTypeCustomer)

	if err := CreateOffer(ctx, db, &domain.Offer{
		ID:          uuid.NewString(),
		UserID:      business,
		Title:       "Logo design",
		Description: "d",
	}); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	for i, rating := range []int{2, 5} {
		reviewer := customer
		if i == 1 {
			reviewer = seedStatsUser(t, db, domain.ProfileTypeCustomer)
		}
		if err := CreateReview(ctx, db, &domain.Review{
			ID:             uuid.NewString(),
			BusinessUserID: business,
			ReviewerID:     reviewer,
			Rating:         rating,
			Description:    "r",
		}); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	s, err := GetPlatformStats(ctx, db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.OfferCount != 1 || s.ReviewCount != 2 || s.BusinessProfileCount != 2 {
		t.Fatalf("counts = %+v", s)
	}
	if s.AverageRating == nil || *s.AverageRating != 3.5 {
		t.Fatalf("average_rating = %v, want 3.5", s.AverageRating)
	}
}
