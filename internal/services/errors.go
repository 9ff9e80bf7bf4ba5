// Package services defines the business logic for offers, orders, reviews,
// profiles, and authentication. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Not-found errors: the referenced entity id does not exist.
var (
	// ErrOfferNotFound indicates that the requested offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrOfferDetailNotFound indicates that the requested detail tier does
	// not exist (or, during an aggregate update, is not part of the offer).
	ErrOfferDetailNotFound = errors.New("offer detail not found")

	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrProfileNotFound indicates that the requested profile (or the
	// profile of a referenced user) does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Authorization errors: the requester is authenticated but the role or
// ownership check does not permit the action.
var (
	// ErrBusinessAccountRequired is returned when an operation reserved for
	// business users (publishing offers) is attempted by another role.
	ErrBusinessAccountRequired = errors.New("business account required")

	// ErrCustomerAccountRequired is returned when an operation reserved for
	// customer users (placing orders, writing reviews) is attempted by
	// another role.
	ErrCustomerAccountRequired = errors.New("customer account required")

	// ErrNotOfferOwner is returned when a user tries to mutate or delete an
	// offer they do not own.
	ErrNotOfferOwner = errors.New("not the offer owner")

	// ErrNotOrderBusiness is returned when someone other than the order's
	// business counterparty tries to change its status.
	ErrNotOrderBusiness = errors.New("not the business user of this order")

	// ErrNotReviewer is returned when someone other than the review's author
	// tries to update or delete it.
	ErrNotReviewer = errors.New("not the author of this review")

	// ErrNotProfileOwner is returned when a user tries to edit a profile
	// that is not their own.
	ErrNotProfileOwner = errors.New("not the profile owner")

	// ErrStaffRequired is returned for administrative operations (order
	// deletion) attempted by a non-staff account.
	ErrStaffRequired = errors.New("staff privileges required")
)

// Conflict and authentication errors.
var (
	// ErrDuplicateReview is returned when a reviewer already reviewed the
	// business user in question.
	ErrDuplicateReview = errors.New("review already exists for this business user")

	// ErrUsernameTaken is returned during registration for an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned during registration for an existing email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials is returned when a login password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports malformed or out-of-range input, naming the
// offending field. Operations fail with a ValidationError before any
// mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// invalidf builds a ValidationError for field with a formatted reason.
func invalidf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AsValidation extracts a *ValidationError from an error chain, if present.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
