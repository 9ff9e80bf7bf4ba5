// Profile HTTP handlers.
//
// This file exposes REST endpoints for user profiles:
//   - GET    /profile/{id}        (fetch one)
//   - PATCH  /profile/{id}        (partial update, owner only)
//   - GET    /profiles            (all profiles)
//   - GET    /profiles/business   (all business profiles)
//   - GET    /profiles/customer   (all customer profiles)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for a partial profile update. The
// profile type is intentionally absent: role changes are administrative.
type UpdateProfileRequest struct {
	Location     *string `json:"location"`
	Tel          *string `json:"tel"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours"`
	Avatar       *string `json:"avatar"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Fetch one profile
// @Description Returns a single profile by its ID.
// @Tags        Profiles
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Profile ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Router      /profile/{id} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "profile id must be a UUID")
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update a profile
// @Description Partially updates the current user's own profile.
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id             path    string  true  "Profile ID (UUID)"  format(uuid)
// @Param       body           body    handlers.UpdateProfileRequest  true  "Partial profile payload"
//
// @Success     200  {object}  domain.Profile
// @Failure     403  {object}  handlers.ErrorResponse "Not the profile owner"
// @Failure     404  {object}  handlers.ErrorResponse "Profile not found"
// @Router      /profile/{id} [patch]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "profile id must be a UUID")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.profileSvc.Update(c.Request.Context(), userID(c), id, services.ProfileUpdateInput{
		Location:     req.Location,
		Tel:          req.Tel,
		Description:  req.Description,
		WorkingHours: req.WorkingHours,
		Avatar:       req.Avatar,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListProfiles godoc
// @ID          listProfiles
// @Summary     List all profiles
// @Tags        Profiles
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
//
// @Success     200  {array}   domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profiles [get]
func (h *Handlers) ListProfiles(c *gin.Context) {
	profiles, err := h.profileSvc.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, profiles)
}

// ListBusinessProfiles godoc
// @ID          listBusinessProfiles
// @Summary     List business profiles
// @Tags        Profiles
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
//
// @Success     200  {array}   domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profiles/business [get]
func (h *Handlers) ListBusinessProfiles(c *gin.Context) {
	h.listProfilesByType(c, domain.ProfileTypeBusiness)
}

// ListCustomerProfiles godoc
// @ID          listCustomerProfiles
// @Summary     List customer profiles
// @Tags        Profiles
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
//
// @Success     200  {array}   domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profiles/customer [get]
func (h *Handlers) ListCustomerProfiles(c *gin.Context) {
	h.listProfilesByType(c, domain.ProfileTypeCustomer)
}

func (h *Handlers) listProfilesByType(c *gin.Context, profileType string) {
	profiles, err := h.profileSvc.ListByType(c.Request.Context(), profileType)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, profiles)
}
