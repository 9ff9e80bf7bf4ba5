// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes give
// clients a stable, machine-readable error taxonomy that supplements the
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes (bad_request, unauthorized, conflict, …) mirror common
//     HTTP status semantics to aid interoperability.
//   - validation_error marks input that failed a business rule; the message
//     names the offending field ("rating: must be between 1 and 5").
//   - All error responses carry both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "review already exists for this business user"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-marketplace-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failService translates a service-layer error into the matching HTTP
// response. Validation errors become 400s whose message names the offending
// field; unmapped errors fall through to a 500 so nothing is silently
// swallowed.
func failService(c *gin.Context, err error) {
	if ve, ok := services.AsValidation(err); ok {
		fail(c, http.StatusBadRequest, ErrCodeValidation, ve.Error())
		return
	}

	switch {
	case errors.Is(err, services.ErrOfferNotFound),
		errors.Is(err, services.ErrOfferDetailNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, services.ErrBusinessAccountRequired),
		errors.Is(err, services.ErrCustomerAccountRequired),
		errors.Is(err, services.ErrNotOfferOwner),
		errors.Is(err, services.ErrNotOrderBusiness),
		errors.Is(err, services.ErrNotReviewer),
		errors.Is(err, services.ErrNotProfileOwner),
		errors.Is(err, services.ErrStaffRequired):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())

	case errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
