// Package services – authorization predicates
//
// Role gating is centralized here instead of scattering profile-type string
// comparisons across operations. Each mutating service method evaluates the
// relevant predicate before touching any state and maps a false result to
// the matching authorization sentinel.
package services

import "github.com/tbourn/go-marketplace-backend/internal/domain"

// canCreateOffer reports whether the profile may publish offers.
func canCreateOffer(p *domain.Profile) bool {
	return p != nil && p.Type == domain.ProfileTypeBusiness
}

// canPlaceOrder reports whether the profile may order against an offer tier.
// Gating is role-based, not ownership-based: a business account can never
// order, which also keeps owners from buying their own offers.
func canPlaceOrder(p *domain.Profile) bool {
	return p != nil && p.Type == domain.ProfileTypeCustomer
}

// canWriteReview reports whether the profile may review business users.
func canWriteReview(p *domain.Profile) bool {
	return p != nil && p.Type == domain.ProfileTypeCustomer
}
