// Offer HTTP handlers.
//
// This file exposes REST endpoints for offer resources:
//   - POST   /offers               (create, business only)
//   - GET    /offers               (list, filtered + paginated)
//   - GET    /offers/{id}          (fetch one with tiers)
//   - PATCH  /offers/{id}          (partial update incl. tier upserts, owner only)
//   - DELETE /offers/{id}          (delete, owner only)
//   - GET    /offerdetails/{id}    (fetch one tier)
//   - PATCH  /offerdetails/{id}    (update one tier, owner only)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. This file also wires the
// Handlers aggregate consumed by the router.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"
	"github.com/tbourn/go-marketplace-backend/internal/services"
	"github.com/tbourn/go-marketplace-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// OfferService defines offer lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OfferService interface {
	// Create publishes a new offer with its detail tiers for userID.
	Create(ctx context.Context, userID string, in services.OfferCreateInput) (*domain.Offer, error)
	// Get returns one offer with tiers and features preloaded.
	Get(ctx context.Context, offerID string) (*domain.Offer, error)
	// ListPage returns a filtered page of offers and the total count.
	ListPage(ctx context.Context, f repo.OfferFilters, page, pageSize int) ([]domain.Offer, int64, error)
	// Update applies a partial update (including tier upserts) to an offer
	// owned by userID.
	Update(ctx context.Context, userID, offerID string, in services.OfferUpdateInput) (*domain.Offer, error)
	// Delete removes an offer owned by userID together with its tiers.
	Delete(ctx context.Context, userID, offerID string) error
	// GetDetail returns one detail tier with features preloaded.
	GetDetail(ctx context.Context, detailID string) (*domain.OfferDetail, error)
	// UpdateDetail applies a partial update to a tier of an offer owned by
	// userID.
	UpdateDetail(ctx context.Context, userID, detailID string, in services.TierInput) (*domain.OfferDetail, error)
}

// OrderService defines order snapshot operations consumed by HTTP handlers.
type OrderService interface {
	// Create places an order for customerID against the given detail tier,
	// honoring an optional idempotency key.
	Create(ctx context.Context, customerID, detailID, idemKey string) (order *domain.Order, replayed bool, err error)
	// UpdateStatus transitions an order's status on behalf of the business
	// counterparty.
	UpdateStatus(ctx context.Context, requesterID, orderID, status string) (*domain.Order, error)
	// Delete removes an order (staff only).
	Delete(ctx context.Context, requesterID, orderID string) error
	// List returns the orders visible to requesterID.
	List(ctx context.Context, requesterID string) ([]domain.Order, error)
	// CountOpen counts in_progress and cancelled orders involving userID.
	CountOpen(ctx context.Context, userID string) (int64, error)
	// CountClosed counts completed orders involving userID.
	CountClosed(ctx context.Context, userID string) (int64, error)
}

// ReviewService defines review operations consumed by HTTP handlers.
type ReviewService interface {
	// Create records a review of businessUserID by reviewerID.
	Create(ctx context.Context, reviewerID, businessUserID string, rating int, description string) (*domain.Review, error)
	// Update applies a partial update to a review authored by requesterID.
	Update(ctx context.Context, requesterID, reviewID string, in services.ReviewUpdateInput) (*domain.Review, error)
	// Delete removes a review authored by requesterID.
	Delete(ctx context.Context, requesterID, reviewID string) error
	// List returns reviews matching the filters.
	List(ctx context.Context, f repo.ReviewFilters) ([]domain.Review, error)
}

// AuthService defines registration and login operations.
type AuthService interface {
	// Register creates a user plus profile and returns fresh credentials.
	Register(ctx context.Context, username, email, password, profileType string) (*services.Credentials, error)
	// Login verifies a username/password pair and returns fresh credentials.
	Login(ctx context.Context, username, password string) (*services.Credentials, error)
}

// ProfileService defines profile operations consumed by HTTP handlers.
type ProfileService interface {
	// Get returns a profile by its ID.
	Get(ctx context.Context, id string) (*domain.Profile, error)
	// Update applies a partial update to a profile owned by requesterID.
	Update(ctx context.Context, requesterID, id string, in services.ProfileUpdateInput) (*domain.Profile, error)
	// List returns all profiles.
	List(ctx context.Context) ([]domain.Profile, error)
	// ListByType returns all profiles of the given type.
	ListByType(ctx context.Context, profileType string) ([]domain.Profile, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for offers, orders, reviews, profiles,
// authentication, and platform stats. It depends on abstract service
// interfaces to keep transport concerns separate from business logic; the DB
// handle is only used for the read-only stats endpoint.
type Handlers struct {
	offerSvc   OfferService
	orderSvc   OrderService
	reviewSvc  ReviewService
	authSvc    AuthService
	profileSvc ProfileService
	db         *gorm.DB
}

// New constructs and returns a Handlers instance bound to the given services.
func New(offerSvc OfferService, orderSvc OrderService, reviewSvc ReviewService, authSvc AuthService, profileSvc ProfileService, db *gorm.DB) *Handlers {
	return &Handlers{
		offerSvc:   offerSvc,
		orderSvc:   orderSvc,
		reviewSvc:  reviewSvc,
		authSvc:    authSvc,
		profileSvc: profileSvc,
		db:         db,
	}
}

// userID extracts the authenticated user id from Gin context (set by the auth
// middleware). If absent, it falls back to the "X-User-ID" header (tests use
// it). It never touches c.Request when that is nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// TierPayload is the JSON shape of one detail tier in offer requests. All
// fields are optional at the transport layer; the service decides which are
// required for the operation at hand.
type TierPayload struct {
	// ID targets an existing tier during offer updates; omitted for new tiers.
	ID                 *string          `json:"id,omitempty"`
	Title              *string          `json:"title"`
	Revisions          *int             `json:"revisions"`
	DeliveryTimeInDays *int             `json:"delivery_time_in_days"`
	Price              *decimal.Decimal `json:"price"`
	OfferType          *string          `json:"offer_type" example:"basic"`
	// Features holds feature names; unknown names are registered on the fly.
	Features []string `json:"features"`
}

// toInput converts the payload into the service-layer tier input.
func (p TierPayload) toInput() services.TierInput {
	return services.TierInput{
		ID:                 p.ID,
		Title:              p.Title,
		Revisions:          p.Revisions,
		DeliveryTimeInDays: p.DeliveryTimeInDays,
		Price:              p.Price,
		OfferType:          p.OfferType,
		Features:           p.Features,
	}
}

// CreateOfferRequest is the JSON payload for publishing an offer.
type CreateOfferRequest struct {
	Title       string        `json:"title" binding:"required" example:"Logo design package"`
	Image       string        `json:"image"`
	Description string        `json:"description"`
	Details     []TierPayload `json:"details" binding:"required"`
}

// UpdateOfferRequest is the JSON payload for a partial offer update. A nil
// Details field leaves the tier set untouched; a present one applies full
// upsert semantics (update by id, create without id, delete unreferenced).
type UpdateOfferRequest struct {
	Title       *string        `json:"title"`
	Image       *string        `json:"image"`
	Description *string        `json:"description"`
	Details     *[]TierPayload `json:"details"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListOffersResponse wraps a page of offers and pagination information.
type ListOffersResponse struct {
	Offers     []domain.Offer `json:"offers"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// tierInputs converts a payload slice into service inputs.
func tierInputs(payloads []TierPayload) []services.TierInput {
	in := make([]services.TierInput, 0, len(payloads))
	for _, p := range payloads {
		in = append(in, p.toInput())
	}
	return in
}

//
// Handlers
//

// CreateOffer godoc
// @ID          createOffer
// @Summary     Publish a new offer
// @Description Creates an offer with its detail tiers for the current business user.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       body           body    handlers.CreateOfferRequest  true  "Create offer payload"
//
// @Success     201  {object}  domain.Offer
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse  "Business account required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers [post]
func (h *Handlers) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.OfferCreateInput{
		Title:       strings.TrimSpace(req.Title),
		Image:       req.Image,
		Description: req.Description,
		Details:     tierInputs(req.Details),
	}
	off, err := h.offerSvc.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, off)
}

// ListOffers godoc
// @ID          listOffers
// @Summary     List offers (filtered, paginated)
// @Description Returns a page of offers. Supports creator, free-text search, delivery-time ceiling, and ordering filters.
// @Tags        Offers
// @Produce     json
//
// @Param       creator_id         query  string  false "Only offers by this user"
// @Param       search             query  string  false "Substring match on title or description"
// @Param       max_delivery_time  query  int     false "Only offers deliverable within N days"
// @Param       ordering           query  string  false "min_price | -min_price | updated_at | -updated_at"
// @Param       page               query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size          query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOffersResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /offers [get]
func (h *Handlers) ListOffers(c *gin.Context) {
	page, pageSize := clampPagination(c)

	f := repo.OfferFilters{
		CreatorID: c.Query("creator_id"),
		Search:    strings.TrimSpace(c.Query("search")),
		Ordering:  c.Query("ordering"),
	}
	if raw := c.Query("max_delivery_time"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "max_delivery_time must be an integer")
			return
		}
		f.MaxDeliveryTime = &n
	}

	items, total, err := h.offerSvc.ListPage(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListOffersResponse{
		Offers: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetOffer godoc
// @ID          getOffer
// @Summary     Fetch one offer
// @Description Returns a single offer with its detail tiers and their features.
// @Tags        Offers
// @Produce     json
//
// @Param       id  path  string  true  "Offer ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Offer
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Offer not found"
// @Router      /offers/{id} [get]
func (h *Handlers) GetOffer(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}
	off, err := h.offerSvc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, off)
}

// UpdateOffer godoc
// @ID          updateOffer
// @Summary     Update an offer
// @Description Partially updates an offer owned by the current user. When tiers are included, they are upserted by id and unreferenced tiers are removed; the derived minima are recomputed.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Offer ID (UUID)"  format(uuid)
// @Param       body           body    handlers.UpdateOfferRequest  true  "Partial offer payload"
//
// @Success     200  {object} domain.Offer
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Not the offer owner"
// @Failure     404  {object} handlers.ErrorResponse "Offer not found"
// @Router      /offers/{id} [patch]
func (h *Handlers) UpdateOffer(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}

	var req UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.OfferUpdateInput{
		Title:       req.Title,
		Image:       req.Image,
		Description: req.Description,
	}
	if req.Details != nil {
		tiers := tierInputs(*req.Details)
		in.Details = &tiers
	}

	off, err := h.offerSvc.Update(c.Request.Context(), userID(c), id, in)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, off)
}

// DeleteOffer godoc
// @ID          deleteOffer
// @Summary     Delete an offer
// @Description Removes an offer owned by the current user, together with its tiers and feature links.
// @Tags        Offers
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Offer ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the offer owner"
// @Failure     404  {object} handlers.ErrorResponse "Offer not found"
// @Router      /offers/{id} [delete]
func (h *Handlers) DeleteOffer(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}
	if err := h.offerSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// GetOfferDetail godoc
// @ID          getOfferDetail
// @Summary     Fetch one detail tier
// @Description Returns a single offer detail tier with its features.
// @Tags        Offers
// @Produce     json
//
// @Param       id  path  string  true  "Offer detail ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.OfferDetail
// @Failure     404  {object} handlers.ErrorResponse "Offer detail not found"
// @Router      /offerdetails/{id} [get]
func (h *Handlers) GetOfferDetail(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer detail id must be a UUID")
		return
	}
	det, err := h.offerSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, det)
}

// UpdateOfferDetail godoc
// @ID          updateOfferDetail
// @Summary     Update one detail tier
// @Description Partially updates a tier of an offer owned by the current user; the offer's derived minima are recomputed in the same transaction.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Offer detail ID (UUID)"  format(uuid)
// @Param       body           body    handlers.TierPayload  true  "Partial tier payload"
//
// @Success     200  {object} domain.OfferDetail
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Not the offer owner"
// @Failure     404  {object} handlers.ErrorResponse "Offer detail not found"
// @Router      /offerdetails/{id} [patch]
func (h *Handlers) UpdateOfferDetail(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer detail id must be a UUID")
		return
	}

	var req TierPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	det, err := h.offerSvc.UpdateDetail(c.Request.Context(), userID(c), id, req.toInput())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, det)
}
