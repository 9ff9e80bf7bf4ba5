package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

func TestProfile_Update_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)
	stranger := seedUser(t, db, domain.ProfileTypeCustomer)

	var p domain.Profile
	if err := db.Where("user_id = ?", owner).First(&p).Error; err != nil {
		t.Fatalf("seed lookup: %v", err)
	}

	if _, err := svc.Update(context.Background(), stranger, p.ID, ProfileUpdateInput{Location: strp("Berlin")}); !errors.Is(err, ErrNotProfileOwner) {
		t.Fatalf("expected ErrNotProfileOwner, got %v", err)
	}

	got, err := svc.Update(context.Background(), owner, p.ID, ProfileUpdateInput{
		Location:     strp("Berlin"),
		WorkingHours: strp("9-17"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Location != "Berlin" || got.WorkingHours != "9-17" {
		t.Fatalf("updated = %q %q", got.Location, got.WorkingHours)
	}
	// Untouched fields survive a partial update.
	if got.Type != domain.ProfileTypeBusiness {
		t.Fatalf("type drifted to %s", got.Type)
	}
}

func TestProfile_Get_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfile_ListByType(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	seedUser(t, db, domain.ProfileTypeBusiness)
	seedUser(t, db, domain.ProfileTypeBusiness)
	seedUser(t, db, domain.ProfileTypeCustomer)

	business, err := svc.ListByType(context.Background(), domain.ProfileTypeBusiness)
	if err != nil || len(business) != 2 {
		t.Fatalf("business: n=%d err=%v", len(business), err)
	}
	customers, err := svc.ListByType(context.Background(), domain.ProfileTypeCustomer)
	if err != nil || len(customers) != 1 {
		t.Fatalf("customers: n=%d err=%v", len(customers), err)
	}

	if _, err := svc.ListByType(context.Background(), "admin"); err == nil {
		t.Fatalf("expected validation error for unknown type")
	}
}
