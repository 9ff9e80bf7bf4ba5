// Review HTTP handlers.
//
// This file exposes REST endpoints for reviews of business users:
//   - POST   /reviews        (create, customer only, one per business)
//   - GET    /reviews        (list, filtered)
//   - PATCH  /reviews/{id}   (update rating/description, author only)
//   - DELETE /reviews/{id}   (delete, author only)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-marketplace-backend/internal/repo"
	"github.com/tbourn/go-marketplace-backend/internal/services"
)

// CreateReviewRequest is the JSON payload for writing a review.
type CreateReviewRequest struct {
	BusinessUserID string `json:"business_user_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Rating         int    `json:"rating" binding:"required" example:"4"`
	Description    string `json:"description"`
}

// UpdateReviewRequest is the JSON payload for a partial review update.
type UpdateReviewRequest struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

// CreateReview godoc
// @ID          createReview
// @Summary     Review a business user
// @Description Records a rating (1–5) of a business user by the current customer. A reviewer may review each business at most once.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       body           body    handlers.CreateReviewRequest  true  "Review payload"
//
// @Success     201  {object}  domain.Review
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse "Customer account required"
// @Failure     409  {object}  handlers.ErrorResponse "Review already exists"
// @Router      /reviews [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "business_user_id and rating required")
		return
	}
	if _, err := uuid.Parse(req.BusinessUserID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "business_user_id must be a UUID")
		return
	}

	r, err := h.reviewSvc.Create(c.Request.Context(), userID(c), req.BusinessUserID, req.Rating, req.Description)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListReviews godoc
// @ID          listReviews
// @Summary     List reviews
// @Description Returns reviews, optionally scoped to one business user or one reviewer, most recently updated first unless another ordering is requested.
// @Tags        Reviews
// @Produce     json
//
// @Param       Authorization     header  string  true   "Bearer token"
// @Param       business_user_id  query   string  false  "Only reviews of this business user"
// @Param       reviewer_id       query   string  false  "Only reviews by this reviewer"
// @Param       ordering          query   string  false  "updated_at | -updated_at | rating | -rating"
//
// @Success     200  {array}   domain.Review
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reviews [get]
func (h *Handlers) ListReviews(c *gin.Context) {
	f := repo.ReviewFilters{
		BusinessUserID: c.Query("business_user_id"),
		ReviewerID:     c.Query("reviewer_id"),
		Ordering:       c.Query("ordering"),
	}
	reviews, err := h.reviewSvc.List(c.Request.Context(), f)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, reviews)
}

// UpdateReview godoc
// @ID          updateReview
// @Summary     Update a review
// @Description Partially updates a review authored by the current user.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Review ID (UUID)"  format(uuid)
// @Param       body           body    handlers.UpdateReviewRequest  true  "Partial review payload"
//
// @Success     200  {object}  domain.Review
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     403  {object}  handlers.ErrorResponse "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse "Review not found"
// @Router      /reviews/{id} [patch]
func (h *Handlers) UpdateReview(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "review id must be a UUID")
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	r, err := h.reviewSvc.Update(c.Request.Context(), userID(c), id, services.ReviewUpdateInput{
		Rating:      req.Rating,
		Description: req.Description,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// DeleteReview godoc
// @ID          deleteReview
// @Summary     Delete a review
// @Description Removes a review authored by the current user.
// @Tags        Reviews
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Review ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     403  {object}  handlers.ErrorResponse "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse "Review not found"
// @Router      /reviews/{id} [delete]
func (h *Handlers) DeleteReview(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "review id must be a UUID")
		return
	}
	if err := h.reviewSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
