package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedUser creates a user with a profile of the given type and returns the
// user id.
func seedUser(t *testing.T, db *gorm.DB, profileType string) string {
	t.Helper()
	uid := uuid.NewString()
	u := &domain.User{
		ID:           uid,
		Username:     "u_" + uid[:8],
		Email:        uid[:8] + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p := &domain.Profile{ID: uuid.NewString(), UserID: uid, Type: profileType}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return uid
}

func seedStaff(t *testing.T, db *gorm.DB) string {
	t.Helper()
	uid := seedUser(t, db, domain.ProfileTypeCustomer)
	if err := db.Model(&domain.User{}).Where("id = ?", uid).Update("is_staff", true).Error; err != nil {
		t.Fatalf("mark staff: %v", err)
	}
	return uid
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// tier builds a complete TierInput for create calls.
func tier(title string, delivery int, price, offerType string, features ...string) TierInput {
	return TierInput{
		Title:              strp(title),
		Revisions:          intp(1),
		DeliveryTimeInDays: intp(delivery),
		Price:              decp(price),
		OfferType:          strp(offerType),
		Features:           features,
	}
}

func TestOffer_Create_DerivesMinima(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title:       "Logo design",
		Description: "three tiers",
		Details: []TierInput{
			tier("Basic", 7, "100.00", domain.OfferTypeBasic, "Logo"),
			tier("Standard", 5, "200.00", domain.OfferTypeStandard, "Logo", "Flyer"),
			tier("Premium", 10, "300.00", domain.OfferTypePremium),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if off.MinPrice == nil || !off.MinPrice.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("min_price = %v, want 100.00", off.MinPrice)
	}
	if off.MinDeliveryTime == nil || *off.MinDeliveryTime != 5 {
		t.Fatalf("min_delivery_time = %v, want 5", off.MinDeliveryTime)
	}
	if len(off.Details) != 3 {
		t.Fatalf("details = %d, want 3", len(off.Details))
	}
}

func TestOffer_Create_RequiresBusinessProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	customer := seedUser(t, db, domain.ProfileTypeCustomer)

	_, err := svc.Create(context.Background(), customer, OfferCreateInput{
		Title:   "nope",
		Details: []TierInput{tier("Basic", 3, "10.00", domain.OfferTypeBasic)},
	})
	if !errors.Is(err, ErrBusinessAccountRequired) {
		t.Fatalf("expected ErrBusinessAccountRequired, got %v", err)
	}
}

func TestOffer_Create_InvalidTierLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	_, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title: "bad tier",
		Details: []TierInput{
			tier("Basic", 3, "10.00", domain.OfferTypeBasic),
			tier("Broken", 3, "10.00", "deluxe"), // unknown tier type
		},
	})
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var n int64
	if err := db.Model(&domain.Offer{}).Count(&n).Error; err != nil {
		t.Fatalf("count offers: %v", err)
	}
	if n != 0 {
		t.Fatalf("offers persisted = %d, want 0", n)
	}
}

func TestOffer_Update_TierUpsertAndPrune(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title: "two tiers",
		Details: []TierInput{
			tier("Basic", 7, "100.00", domain.OfferTypeBasic),
			tier("Premium", 3, "50.00", domain.OfferTypePremium),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Keep the basic tier (raising its price), add a new standard one, and
	// leave the premium tier unreferenced so it is pruned.
	var basicID string
	for _, d := range off.Details {
		if d.OfferType == domain.OfferTypeBasic {
			basicID = d.ID
		}
	}
	details := []TierInput{
		{ID: &basicID, Price: decp("120.00")},
		tier("Standard", 9, "180.00", domain.OfferTypeStandard),
	}
	got, err := svc.Update(context.Background(), owner, off.ID, OfferUpdateInput{Details: &details})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(got.Details))
	}
	for _, d := range got.Details {
		if d.OfferType == domain.OfferTypePremium {
			t.Fatalf("premium tier should have been pruned")
		}
	}
	// 50.00 is gone with the premium tier, so the basic tier's new price wins.
	if got.MinPrice == nil || !got.MinPrice.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("min_price = %v, want 120.00", got.MinPrice)
	}
	if got.MinDeliveryTime == nil || *got.MinDeliveryTime != 7 {
		t.Fatalf("min_delivery_time = %v, want 7", got.MinDeliveryTime)
	}
}

func TestOffer_Update_EmptyTierListClearsMinima(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title:   "soon empty",
		Details: []TierInput{tier("Basic", 3, "10.00", domain.OfferTypeBasic)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	empty := []TierInput{}
	got, err := svc.Update(context.Background(), owner, off.ID, OfferUpdateInput{Details: &empty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.MinPrice != nil || got.MinDeliveryTime != nil {
		t.Fatalf("minima = (%v, %v), want (nil, nil)", got.MinPrice, got.MinDeliveryTime)
	}
	if len(got.Details) != 0 {
		t.Fatalf("details = %d, want 0", len(got.Details))
	}
}

func TestOffer_Update_NotOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)
	other := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title:   "mine",
		Details: []TierInput{tier("Basic", 3, "10.00", domain.OfferTypeBasic)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), other, off.ID, OfferUpdateInput{Title: strp("stolen")})
	if !errors.Is(err, ErrNotOfferOwner) {
		t.Fatalf("expected ErrNotOfferOwner, got %v", err)
	}
}

func TestOffer_UpdateDetail_RecomputesParentMinima(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title: "tiers",
		Details: []TierInput{
			tier("Basic", 7, "100.00", domain.OfferTypeBasic),
			tier("Standard", 5, "200.00", domain.OfferTypeStandard),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var standardID string
	for _, d := range off.Details {
		if d.OfferType == domain.OfferTypeStandard {
			standardID = d.ID
		}
	}

	// Undercut the basic tier's price from the standard tier.
	_, err = svc.UpdateDetail(context.Background(), owner, standardID, TierInput{Price: decp("80.00")})
	if err != nil {
		t.Fatalf("update detail: %v", err)
	}

	got, err := svc.Get(context.Background(), off.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MinPrice == nil || !got.MinPrice.Equal(decimal.RequireFromString("80.00")) {
		t.Fatalf("min_price = %v, want 80.00", got.MinPrice)
	}
}

func TestOffer_UpdateDetail_FeatureReplaceSemantics(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title:   "features",
		Details: []TierInput{tier("Basic", 3, "10.00", domain.OfferTypeBasic, "Logo", "Flyer")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	detID := off.Details[0].ID

	// A nil feature list leaves the set untouched.
	got, err := svc.UpdateDetail(context.Background(), owner, detID, TierInput{Revisions: intp(5)})
	if err != nil {
		t.Fatalf("update detail: %v", err)
	}
	if len(got.Features) != 2 {
		t.Fatalf("features = %d, want 2 (untouched)", len(got.Features))
	}

	// A non-empty list replaces the whole set.
	got, err = svc.UpdateDetail(context.Background(), owner, detID, TierInput{Features: []string{"Banner"}})
	if err != nil {
		t.Fatalf("update detail: %v", err)
	}
	if len(got.Features) != 1 || got.Features[0].Name != "Banner" {
		t.Fatalf("features = %+v, want [Banner]", got.Features)
	}
}

func TestOffer_Delete_RemovesTiers(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	owner := seedUser(t, db, domain.ProfileTypeBusiness)

	off, err := svc.Create(context.Background(), owner, OfferCreateInput{
		Title:   "doomed",
		Details: []TierInput{tier("Basic", 3, "10.00", domain.OfferTypeBasic)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), owner, off.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), off.ID); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
	var n int64
	if err := db.Model(&domain.OfferDetail{}).Count(&n).Error; err != nil {
		t.Fatalf("count details: %v", err)
	}
	if n != 0 {
		t.Fatalf("details left = %d, want 0", n)
	}
}

func TestOffer_ListPage_FiltersAndOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	a := seedUser(t, db, domain.ProfileTypeBusiness)
	b := seedUser(t, db, domain.ProfileTypeBusiness)

	mk := func(owner, title string, delivery int, price string) {
		t.Helper()
		_, err := svc.Create(context.Background(), owner, OfferCreateInput{
			Title:   title,
			Details: []TierInput{tier("Basic", delivery, price, domain.OfferTypeBasic)},
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mk(a, "Logo design", 3, "100.00")
	mk(a, "Flyer design", 10, "50.00")
	mk(b, "Logo animation", 5, "75.00")

	// Creator filter.
	items, total, err := svc.ListPage(context.Background(), repo.OfferFilters{CreatorID: a}, 1, 20)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("creator filter: items=%d total=%d err=%v", len(items), total, err)
	}

	// Search on title.
	_, total, err = svc.ListPage(context.Background(), repo.OfferFilters{Search: "Logo"}, 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("search filter: total=%d err=%v", total, err)
	}

	// Delivery ceiling.
	_, total, err = svc.ListPage(context.Background(), repo.OfferFilters{MaxDeliveryTime: intp(5)}, 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("delivery filter: total=%d err=%v", total, err)
	}

	// Ascending min_price ordering.
	items, _, err = svc.ListPage(context.Background(), repo.OfferFilters{Ordering: "min_price"}, 1, 20)
	if err != nil {
		t.Fatalf("ordering: %v", err)
	}
	if len(items) != 3 || !items[0].MinPrice.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("ordering min_price: first=%v", items[0].MinPrice)
	}
}
