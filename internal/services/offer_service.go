// Package services – OfferService
//
// This file implements the OfferService, which owns the offer aggregate:
// the offer row, its detail tiers, and the cached min_price /
// min_delivery_time derived from them. Every mutation of the tier set runs
// inside one transaction that ends by recomputing the minima, so the cached
// values can never be observed stale: they are NULL exactly when the offer
// has zero tiers, and the minimum across tiers otherwise.
//
// Service-level errors (ErrOfferNotFound, ErrNotOfferOwner, ValidationError,
// …) are returned for predictable cases so handlers can map them to HTTP
// results consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// offerTypes is the closed set of valid detail tiers.
var offerTypes = map[string]struct{}{
	domain.OfferTypeBasic:    {},
	domain.OfferTypeStandard: {},
	domain.OfferTypePremium:  {},
}

// TierInput describes one detail tier in an offer create or update request.
// On update, a nil field leaves the stored value untouched; a non-empty
// Features list replaces the tier's entire feature set, while a nil or empty
// list leaves it alone. An entry with ID set updates that tier in place; an
// entry without ID creates a new tier.
type TierInput struct {
	ID                 *string
	Title              *string
	Revisions          *int
	DeliveryTimeInDays *int
	Price              *decimal.Decimal
	OfferType          *string
	Features           []string
}

// OfferCreateInput carries the fields for a new offer with its tiers.
type OfferCreateInput struct {
	Title       string
	Image       string
	Description string
	Details     []TierInput
}

// OfferUpdateInput carries a partial offer update. A nil Details pointer
// leaves the tier set untouched; a non-nil pointer applies full upsert
// semantics (update by id, create without id, delete unreferenced).
type OfferUpdateInput struct {
	Title       *string
	Image       *string
	Description *string
	Details     *[]TierInput
}

// OfferService provides the offer aggregate use-cases: creation, aggregate
// update, deletion, single-tier update, and listing with filters.
type OfferService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewOfferService constructs an OfferService.
func NewOfferService(db *gorm.DB) *OfferService {
	return &OfferService{DB: db}
}

// Create publishes a new offer with at least one detail tier on behalf of
// userID, who must hold a business profile. The offer row, all tiers, their
// resolved features, and the derived minima are written in one transaction;
// any failure rolls the whole creation back.
func (s *OfferService) Create(ctx context.Context, userID string, in OfferCreateInput) (*domain.Offer, error) {
	tr := otel.Tracer("services/OfferService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	profile, err := repo.GetProfileByUserID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if !canCreateOffer(profile) {
		return nil, ErrBusinessAccountRequired
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}
	if len(in.Details) == 0 {
		return nil, invalidf("details", "an offer requires at least one detail tier")
	}
	for i := range in.Details {
		if err := validateTier(&in.Details[i], true); err != nil {
			return nil, err
		}
	}

	offerID := uuid.NewString()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o := &domain.Offer{
			ID:          offerID,
			UserID:      userID,
			Title:       strings.TrimSpace(in.Title),
			Image:       in.Image,
			Description: in.Description,
		}
		if err := repo.CreateOffer(ctx, tx, o); err != nil {
			return err
		}
		for i := range in.Details {
			if _, err := createTier(ctx, tx, offerID, &in.Details[i]); err != nil {
				return err
			}
		}
		return recomputeAggregates(ctx, tx, offerID)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetOffer(ctx, s.DB, offerID)
}

// Get returns a single offer with tiers and features, or ErrOfferNotFound.
func (s *OfferService) Get(ctx context.Context, offerID string) (*domain.Offer, error) {
	o, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListPage returns a page of offers matching the filters plus the total
// count. It applies defaults for invalid page/pageSize values.
func (s *OfferService) ListPage(ctx context.Context, f repo.OfferFilters, page, pageSize int) ([]domain.Offer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountOffers(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Offer{}, 0, nil
	}

	items, err := repo.ListOffersPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// Update applies a partial update to an offer owned by userID. When the
// input carries a tier list, it is treated as the complete desired set:
// entries with an id update that tier in place, entries without an id create
// new tiers, and any existing tier not referenced is deleted. The whole
// sequence, including the final recomputation of the minima, is one
// transaction.
func (s *OfferService) Update(ctx context.Context, userID, offerID string, in OfferUpdateInput) (*domain.Offer, error) {
	tr := otel.Tracer("services/OfferService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("offer.id", offerID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	offer, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if offer.UserID != userID {
		return nil, ErrNotOfferOwner
	}

	// Validate everything up front: a failed tier must not leave the
	// aggregate half-updated, and failing before the transaction keeps the
	// rollback path trivial.
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}
	if in.Details != nil {
		for i := range *in.Details {
			t := &(*in.Details)[i]
			if err := validateTier(t, t.ID == nil); err != nil {
				return nil, err
			}
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{}
		if in.Title != nil {
			fields["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Image != nil {
			fields["image"] = *in.Image
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if err := repo.UpdateOfferFields(ctx, tx, offerID, fields); err != nil {
			return err
		}

		if in.Details != nil {
			existing, err := repo.ListOfferDetails(ctx, tx, offerID)
			if err != nil {
				return err
			}
			byID := make(map[string]*domain.OfferDetail, len(existing))
			for i := range existing {
				byID[existing[i].ID] = &existing[i]
			}

			referenced := make(map[string]struct{})
			for i := range *in.Details {
				t := &(*in.Details)[i]
				if t.ID == nil {
					if _, err := createTier(ctx, tx, offerID, t); err != nil {
						return err
					}
					continue
				}
				d, ok := byID[*t.ID]
				if !ok {
					return ErrOfferDetailNotFound
				}
				referenced[d.ID] = struct{}{}
				if err := applyTierUpdate(ctx, tx, d, t); err != nil {
					return err
				}
			}

			// Existing tiers absent from the upsert list are removed.
			for i := range existing {
				if _, keep := referenced[existing[i].ID]; keep {
					continue
				}
				if err := repo.DeleteOfferDetail(ctx, tx, &existing[i]); err != nil {
					return err
				}
			}
		}

		return recomputeAggregates(ctx, tx, offerID)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetOffer(ctx, s.DB, offerID)
}

// Delete removes an offer owned by userID together with all its tiers.
func (s *OfferService) Delete(ctx context.Context, userID, offerID string) error {
	offer, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOfferNotFound
		}
		return err
	}
	if offer.UserID != userID {
		return ErrNotOfferOwner
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		details, err := repo.ListOfferDetails(ctx, tx, offerID)
		if err != nil {
			return err
		}
		for i := range details {
			if err := repo.DeleteOfferDetail(ctx, tx, &details[i]); err != nil {
				return err
			}
		}
		return repo.DeleteOffer(ctx, tx, offerID)
	})
}

// GetDetail returns a single detail tier, or ErrOfferDetailNotFound.
func (s *OfferService) GetDetail(ctx context.Context, detailID string) (*domain.OfferDetail, error) {
	d, err := repo.GetOfferDetail(ctx, s.DB, detailID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferDetailNotFound
		}
		return nil, err
	}
	return d, nil
}

// UpdateDetail applies a partial update to a single tier owned (through its
// offer) by userID, then re-derives the parent offer's minima in the same
// transaction.
func (s *OfferService) UpdateDetail(ctx context.Context, userID, detailID string, in TierInput) (*domain.OfferDetail, error) {
	d, err := repo.GetOfferDetail(ctx, s.DB, detailID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferDetailNotFound
		}
		return nil, err
	}
	offer, err := repo.GetOffer(ctx, s.DB, d.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.UserID != userID {
		return nil, ErrNotOfferOwner
	}
	if err := validateTier(&in, false); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyTierUpdate(ctx, tx, d, &in); err != nil {
			return err
		}
		return recomputeAggregates(ctx, tx, d.OfferID)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetOfferDetail(ctx, s.DB, detailID)
}

// validateTier checks tier fields. When forCreate is true all required
// fields must be present; otherwise only provided fields are checked.
func validateTier(t *TierInput, forCreate bool) error {
	if forCreate {
		if t.Title == nil || strings.TrimSpace(*t.Title) == "" {
			return invalidf("details.title", "must not be empty")
		}
		if t.DeliveryTimeInDays == nil {
			return invalidf("details.delivery_time_in_days", "is required")
		}
		if t.Price == nil {
			return invalidf("details.price", "is required")
		}
		if t.OfferType == nil {
			return invalidf("details.offer_type", "is required")
		}
	}
	if t.Title != nil && strings.TrimSpace(*t.Title) == "" {
		return invalidf("details.title", "must not be empty")
	}
	if t.Revisions != nil && *t.Revisions < 0 {
		return invalidf("details.revisions", "must be >= 0")
	}
	if t.DeliveryTimeInDays != nil && *t.DeliveryTimeInDays < 0 {
		return invalidf("details.delivery_time_in_days", "must be >= 0")
	}
	if t.Price != nil && t.Price.IsNegative() {
		return invalidf("details.price", "must be >= 0")
	}
	if t.OfferType != nil {
		if _, ok := offerTypes[*t.OfferType]; !ok {
			return invalidf("details.offer_type", "must be one of basic, standard, premium")
		}
	}
	for _, n := range t.Features {
		if strings.TrimSpace(n) == "" {
			return invalidf("details.features", "feature names must not be blank")
		}
	}
	return nil
}

// createTier persists one new tier under offerID, resolving its feature
// names through the registry. Assumes the input has been validated.
func createTier(ctx context.Context, tx *gorm.DB, offerID string, t *TierInput) (*domain.OfferDetail, error) {
	features, err := repo.ResolveFeatures(ctx, tx, t.Features)
	if err != nil {
		return nil, err
	}
	d := &domain.OfferDetail{
		ID:                 uuid.NewString(),
		OfferID:            offerID,
		Title:              strings.TrimSpace(*t.Title),
		DeliveryTimeInDays: *t.DeliveryTimeInDays,
		Price:              *t.Price,
		OfferType:          *t.OfferType,
		Features:           features,
	}
	if t.Revisions != nil {
		d.Revisions = *t.Revisions
	}
	if err := repo.CreateOfferDetail(ctx, tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// applyTierUpdate applies the provided fields of t to the stored tier d.
// A non-empty feature list replaces the tier's entire feature set.
func applyTierUpdate(ctx context.Context, tx *gorm.DB, d *domain.OfferDetail, t *TierInput) error {
	fields := map[string]interface{}{}
	if t.Title != nil {
		fields["title"] = strings.TrimSpace(*t.Title)
	}
	if t.Revisions != nil {
		fields["revisions"] = *t.Revisions
	}
	if t.DeliveryTimeInDays != nil {
		fields["delivery_time_in_days"] = *t.DeliveryTimeInDays
	}
	if t.Price != nil {
		fields["price"] = *t.Price
	}
	if t.OfferType != nil {
		fields["offer_type"] = *t.OfferType
	}
	if err := repo.UpdateOfferDetailFields(ctx, tx, d.ID, fields); err != nil {
		return err
	}
	if len(t.Features) > 0 {
		features, err := repo.ResolveFeatures(ctx, tx, t.Features)
		if err != nil {
			return err
		}
		if err := repo.ReplaceDetailFeatures(ctx, tx, d, features); err != nil {
			return err
		}
	}
	return nil
}

// recomputeAggregates re-derives min_price and min_delivery_time from the
// offer's current tier set and persists them. Both become NULL when the
// offer has no tiers left.
func recomputeAggregates(ctx context.Context, tx *gorm.DB, offerID string) error {
	details, err := repo.ListOfferDetails(ctx, tx, offerID)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		return repo.UpdateOfferAggregates(ctx, tx, offerID, nil, nil)
	}
	minPrice := details[0].Price
	minDelivery := details[0].DeliveryTimeInDays
	for _, d := range details[1:] {
		if d.Price.LessThan(minPrice) {
			minPrice = d.Price
		}
		if d.DeliveryTimeInDays < minDelivery {
			minDelivery = d.DeliveryTimeInDays
		}
	}
	return repo.UpdateOfferAggregates(ctx, tx, offerID, minPrice, minDelivery)
}
