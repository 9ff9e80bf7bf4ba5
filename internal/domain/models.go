// Package domain defines the persistence models for the marketplace: users
// and their profiles, offers with priced detail tiers, feature tags, order
// snapshots, and reviews. These types are mapped with GORM and form the core
// data layer of the application.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile types. A profile's type gates which mutations the user may perform:
// business users publish offers, customer users place orders and write reviews.
const (
	ProfileTypeCustomer = "customer"
	ProfileTypeBusiness = "business"
)

// Offer detail tiers.
const (
	OfferTypeBasic    = "basic"
	OfferTypeStandard = "standard"
	OfferTypePremium  = "premium"
)

// Order lifecycle statuses.
const (
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// User is an identity record. Credentials are verified against PasswordHash;
// IsStaff marks administrative accounts (order deletion, unscoped order list).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username / Email: unique login identifiers.
//   - PasswordHash: bcrypt hash, never serialized.
//   - IsStaff: administrative flag.
type User struct {
	ID           string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string    `json:"email"    gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string    `json:"-"        gorm:"type:varchar(128);not null"`
	IsStaff      bool      `json:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Profile carries the public-facing account data, one-to-one with a User.
// Type is either "customer" or "business" and is checked by the authorization
// predicates before any role-gated mutation.
type Profile struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:char(36);not null;uniqueIndex"`
	Type         string    `json:"type"          gorm:"type:varchar(20);not null;default:'customer';check:type IN ('customer','business')"`
	Location     string    `json:"location"      gorm:"type:varchar(100)"`
	Tel          string    `json:"tel"           gorm:"type:varchar(100)"`
	Description  string    `json:"description"   gorm:"type:text"`
	WorkingHours string    `json:"working_hours" gorm:"type:varchar(100)"`
	Avatar       string    `json:"avatar"        gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// User is the owning identity. Profiles are cascade-deleted with the user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Feature is a deduplicated named tag attachable to offer detail tiers and,
// by copy, to orders. Features are immutable values keyed by name: they are
// created on demand (get-or-create) and never updated through normal flows.
type Feature struct {
	ID   string `json:"id"   gorm:"type:char(36);primaryKey"`
	Name string `json:"name" gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the database table name for Feature.
func (Feature) TableName() string { return "features" }

// Offer is a published service listing owned by a business user. It owns a
// set of detail tiers and caches the minimum price and delivery time across
// them. The cached minima are recomputed inside every transaction that
// mutates the tier set; both are null while the offer has zero tiers.
type Offer struct {
	ID          string `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string `json:"user_id"     gorm:"type:char(36);not null;index:idx_offer_owner"`
	Title       string `json:"title"       gorm:"type:varchar(100);not null"`
	Image       string `json:"image"       gorm:"type:varchar(255)"`
	Description string `json:"description" gorm:"type:text;not null"`

	// Derived aggregates over Details; see services.OfferService.
	MinPrice        *decimal.Decimal `json:"min_price"         gorm:"type:decimal(10,2)"`
	MinDeliveryTime *int             `json:"min_delivery_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Details []OfferDetail `json:"details" gorm:"foreignKey:OfferID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Offer.
func (Offer) TableName() string { return "offers" }

// OfferDetail is one pricing/delivery tier (basic/standard/premium) belonging
// to exactly one offer. Its feature set is a shared many-to-many relation:
// the Feature rows themselves are owned by the registry, only the links
// belong to the tier.
type OfferDetail struct {
	ID                 string          `json:"id"                    gorm:"type:char(36);primaryKey"`
	OfferID            string          `json:"offer_id"              gorm:"type:char(36);not null;index:idx_offer_details"`
	Title              string          `json:"title"                 gorm:"type:varchar(100);not null"`
	Revisions          int             `json:"revisions"             gorm:"not null;default:0"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days" gorm:"not null"`
	Price              decimal.Decimal `json:"price"                 gorm:"type:decimal(10,2);not null"`
	OfferType          string          `json:"offer_type"            gorm:"type:varchar(20);not null;default:'basic';check:offer_type IN ('basic','standard','premium')"`

	Features []Feature `json:"features" gorm:"many2many:offer_detail_features"`

	// Offer is the owning aggregate. Tiers are cascade-deleted with it.
	Offer *Offer `json:"-" gorm:"foreignKey:OfferID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OfferDetail.
func (OfferDetail) TableName() string { return "offer_details" }

// Order is an immutable snapshot of a detail tier's terms, taken when a
// customer commits to it. It holds no live reference to the offer or tier:
// the priced fields are copied and the feature set is linked through the
// order's own join table, so later tier edits never propagate. Only Status
// changes after creation, and only by the business counterparty.
type Order struct {
	ID                 string          `json:"id"                    gorm:"type:char(36);primaryKey"`
	CustomerUserID     string          `json:"customer_user_id"      gorm:"type:char(36);not null;index:idx_order_customer"`
	BusinessUserID     string          `json:"business_user_id"      gorm:"type:char(36);not null;index:idx_order_business"`
	Title              string          `json:"title"                 gorm:"type:varchar(100);not null"`
	Revisions          int             `json:"revisions"             gorm:"not null;default:0"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days" gorm:"not null"`
	Price              decimal.Decimal `json:"price"                 gorm:"type:decimal(10,2);not null"`
	OfferType          string          `json:"offer_type"            gorm:"type:varchar(20);not null;default:'basic'"`
	Status             string          `json:"status"                gorm:"type:varchar(20);not null;default:'in_progress';check:status IN ('in_progress','completed','cancelled')"`

	Features []Feature `json:"features" gorm:"many2many:order_features"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// Review is a customer's rating of a business user. At most one review may
// exist per (business_user_id, reviewer_id) pair; the invariant is enforced
// at write time inside the create transaction rather than by a unique index.
type Review struct {
	ID             string    `json:"id"               gorm:"type:char(36);primaryKey"`
	BusinessUserID string    `json:"business_user_id" gorm:"type:char(36);not null;index:idx_review_business"`
	ReviewerID     string    `json:"reviewer_id"      gorm:"type:char(36);not null;index:idx_review_reviewer"`
	Rating         int       `json:"rating"           gorm:"not null;default:1;check:rating BETWEEN 1 AND 5"`
	Description    string    `json:"description"      gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }
