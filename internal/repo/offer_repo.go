// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Offer
// aggregate and its detail tiers.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Recomputation of the cached
// min_price/min_delivery_time aggregates is owned by services.OfferService;
// this layer only persists the values it is handed.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// OfferFilters narrows and orders the offer listing.
type OfferFilters struct {
	// CreatorID restricts results to offers owned by this user when non-empty.
	CreatorID string
	// Search is a free-text needle matched against title and description.
	Search string
	// MaxDeliveryTime keeps offers whose min_delivery_time is <= the threshold.
	MaxDeliveryTime *int
	// Ordering is one of: min_price, -min_price, updated_at, -updated_at.
	// Unknown or empty values fall back to -updated_at.
	Ordering string
}

// orderClause maps the public ordering tokens onto SQL ORDER BY clauses.
// NULL minima sort last so empty offers do not shadow priced ones.
var orderClause = map[string]string{
	"min_price":   "min_price IS NULL, min_price asc",
	"-min_price":  "min_price IS NULL, min_price desc",
	"updated_at":  "updated_at asc",
	"-updated_at": "updated_at desc",
}

// offerQuery composes the WHERE clauses shared by CountOffers and
// ListOffersPage from the given filters.
func offerQuery(ctx context.Context, db *gorm.DB, f OfferFilters) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Offer{})
	if f.CreatorID != "" {
		q = q.Where("user_id = ?", f.CreatorID)
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", needle, needle)
	}
	if f.MaxDeliveryTime != nil {
		q = q.Where("min_delivery_time IS NOT NULL AND min_delivery_time <= ?", *f.MaxDeliveryTime)
	}
	return q
}

// CreateOffer inserts a new Offer row. Detail tiers are created separately
// via CreateOfferDetail so the caller can control transaction scope.
func CreateOffer(ctx context.Context, db *gorm.DB, o *domain.Offer) error {
	return db.WithContext(ctx).Omit("Details").Create(o).Error
}

// GetOffer fetches a single offer by ID with its tiers and their features
// preloaded, or ErrNotFound if missing.
func GetOffer(ctx context.Context, db *gorm.DB, id string) (*domain.Offer, error) {
	var o domain.Offer
	err := db.WithContext(ctx).
		Preload("Details.Features").
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountOffers returns the number of offers matching the filters.
func CountOffers(ctx context.Context, db *gorm.DB, f OfferFilters) (int64, error) {
	var total int64
	err := offerQuery(ctx, db, f).Count(&total).Error
	return total, err
}

// ListOffersPage returns a page of offers matching the filters, ordered per
// f.Ordering, with tiers and features preloaded. Use CountOffers to obtain
// the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListOffersPage(ctx context.Context, db *gorm.DB, f OfferFilters, offset, limit int) ([]domain.Offer, error) {
	clause, ok := orderClause[f.Ordering]
	if !ok {
		clause = orderClause["-updated_at"]
	}
	var out []domain.Offer
	err := offerQuery(ctx, db, f).
		Preload("Details.Features").
		Order(clause).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateOfferFields applies a partial update to an offer row. Empty maps are
// a no-op. Returns ErrNotFound when the offer does not exist.
func UpdateOfferFields(ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Offer{}).
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

// UpdateOfferAggregates persists the derived minima on the offer row. Both
// values may be nil, which stores NULL (the zero-tier case).
func UpdateOfferAggregates(ctx context.Context, db *gorm.DB, id string, minPrice interface{}, minDeliveryTime interface{}) error {
	return db.WithContext(ctx).
		Model(&domain.Offer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"min_price":         minPrice,
			"min_delivery_time": minDeliveryTime,
		}).Error
}

// DeleteOffer removes an offer row. Tier rows cascade via the FK constraint;
// their feature links are cleared explicitly by the service before deletion.
// Returns ErrNotFound when no row was deleted.
func DeleteOffer(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Offer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

//
// Detail tiers
//

// CreateOfferDetail inserts a new tier row together with its feature links.
func CreateOfferDetail(ctx context.Context, db *gorm.DB, d *domain.OfferDetail) error {
	return db.WithContext(ctx).Create(d).Error
}

// GetOfferDetail fetches a single tier by ID with features preloaded, or
// ErrNotFound if missing.
func GetOfferDetail(ctx context.Context, db *gorm.DB, id string) (*domain.OfferDetail, error) {
	var d domain.OfferDetail
	err := db.WithContext(ctx).
		Preload("Features").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListOfferDetails returns all tiers belonging to the given offer, features
// preloaded. The order is unspecified.
func ListOfferDetails(ctx context.Context, db *gorm.DB, offerID string) ([]domain.OfferDetail, error) {
	var out []domain.OfferDetail
	err := db.WithContext(ctx).
		Preload("Features").
		Where("offer_id = ?", offerID).
		Find(&out).Error
	return out, err
}

// UpdateOfferDetailFields applies a partial update to a tier row.
func UpdateOfferDetailFields(ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.OfferDetail{}).
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

// ReplaceDetailFeatures swaps the tier's entire feature link set for the
// given features. The Feature rows themselves are left untouched: they are
// shared registry values.
func ReplaceDetailFeatures(ctx context.Context, db *gorm.DB, d *domain.OfferDetail, features []domain.Feature) error {
	return db.WithContext(ctx).Model(d).Association("Features").Replace(features)
}

// DeleteOfferDetail removes a tier row after clearing its feature links.
func DeleteOfferDetail(ctx context.Context, db *gorm.DB, d *domain.OfferDetail) error {
	if err := db.WithContext(ctx).Model(d).Association("Features").Clear(); err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(d).Error
}
