// Package services – OrderService
//
// This file implements the OrderService, which turns a chosen offer detail
// tier into an immutable order snapshot and manages the order lifecycle.
// Creation copies the tier's priced terms and its current feature set by
// value inside one transaction; later edits to the tier never reach the
// order. Only the status column is mutable afterwards, and only by the
// business counterparty.
//
// Order creation optionally honors an idempotency key: a retry with the same
// (user, key) pair within the TTL returns the originally created order
// instead of placing a second one.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
	"github.com/tbourn/go-marketplace-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// orderStatuses is the closed set of valid lifecycle statuses.
var orderStatuses = map[string]struct{}{
	domain.OrderStatusInProgress: {},
	domain.OrderStatusCompleted:  {},
	domain.OrderStatusCancelled:  {},
}

// openStatuses and closedStatuses define the two counting groups. Cancelled
// orders count as open and never as closed, so each order lands in exactly
// one group.
var (
	openStatuses   = []string{domain.OrderStatusInProgress, domain.OrderStatusCancelled}
	closedStatuses = []string{domain.OrderStatusCompleted}
)

// OrderService implements the order snapshot use-cases.
type OrderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// IdempotencyTTL bounds how long a given Idempotency-Key replays the
	// original order. Zero disables key handling.
	IdempotencyTTL time.Duration
}

// NewOrderService constructs an OrderService with a 24h idempotency window.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db, IdempotencyTTL: 24 * time.Hour}
}

// Create places an order for customerID against the given detail tier.
// The requester must hold a customer profile; the business counterparty is
// resolved as the owning offer's owner. Title, revisions, delivery time,
// price, offer type, and the tier's current feature set are copied by value;
// status starts as in_progress.
//
// When idemKey is non-empty and a non-expired record exists for
// (customerID, idemKey), the originally created order is returned with
// replayed=true and no new order is placed.
func (s *OrderService) Create(ctx context.Context, customerID, detailID, idemKey string) (order *domain.Order, replayed bool, err error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", customerID),
			attribute.String("offer_detail.id", detailID),
		),
	)
	defer span.End()

	profile, perr := repo.GetProfileByUserID(ctx, s.DB, customerID)
	if perr != nil {
		if errors.Is(perr, gorm.ErrRecordNotFound) {
			return nil, false, ErrProfileNotFound
		}
		return nil, false, perr
	}
	if !canPlaceOrder(profile) {
		return nil, false, ErrCustomerAccountRequired
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idemKey != "" && s.IdempotencyTTL > 0 {
			if rec, err := repo.GetIdempotency(ctx, tx, customerID, idemKey, time.Now().UTC()); err == nil {
				prev, err := repo.GetOrder(ctx, tx, rec.OrderID)
				if err != nil {
					return err
				}
				order, replayed = prev, true
				return nil
			}
		}

		detail, err := repo.GetOfferDetail(ctx, tx, detailID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferDetailNotFound
			}
			return err
		}
		offer, err := repo.GetOffer(ctx, tx, detail.OfferID)
		if err != nil {
			return err
		}

		o := &domain.Order{
			ID:                 uuid.NewString(),
			CustomerUserID:     customerID,
			BusinessUserID:     offer.UserID,
			Title:              detail.Title,
			Revisions:          detail.Revisions,
			DeliveryTimeInDays: detail.DeliveryTimeInDays,
			Price:              detail.Price,
			OfferType:          detail.OfferType,
			Status:             domain.OrderStatusInProgress,
			Features:           detail.Features,
		}
		if err := repo.CreateOrder(ctx, tx, o); err != nil {
			return err
		}

		if idemKey != "" && s.IdempotencyTTL > 0 {
			if _, err := repo.CreateIdempotency(ctx, tx, customerID, idemKey, o.ID, 201, s.IdempotencyTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, replayed, nil
}

// UpdateStatus transitions an order's status on behalf of requesterID, who
// must be the order's business counterparty. Unknown order ids yield
// ErrOrderNotFound (before any ownership check); unknown statuses fail
// validation. Completed and cancelled are terminal: the only accepted
// "transition" out of them is re-asserting the current value.
func (s *OrderService) UpdateStatus(ctx context.Context, requesterID, orderID, status string) (*domain.Order, error) {
	if _, ok := orderStatuses[status]; !ok {
		return nil, invalidf("status", "must be one of in_progress, completed, cancelled")
	}

	o, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.BusinessUserID != requesterID {
		return nil, ErrNotOrderBusiness
	}
	if o.Status != domain.OrderStatusInProgress && status != o.Status {
		return nil, invalidf("status", "cannot leave terminal status %q", o.Status)
	}

	if err := repo.UpdateOrderStatus(ctx, s.DB, orderID, status); err != nil {
		return nil, err
	}
	return repo.GetOrder(ctx, s.DB, orderID)
}

// Delete removes an order. Restricted to staff accounts.
func (s *OrderService) Delete(ctx context.Context, requesterID, orderID string) error {
	u, err := repo.GetUser(ctx, s.DB, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !u.IsStaff {
		return ErrStaffRequired
	}

	o, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteOrder(ctx, tx, o)
	})
}

// List returns the orders visible to requesterID: those where the requester
// is either party, or every order for staff accounts.
func (s *OrderService) List(ctx context.Context, requesterID string) ([]domain.Order, error) {
	u, err := repo.GetUser(ctx, s.DB, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.IsStaff {
		return repo.ListAllOrders(ctx, s.DB)
	}
	return repo.ListOrdersForUser(ctx, s.DB, requesterID)
}

// CountOpen counts the user's in_progress and cancelled orders, on either
// side of the transaction.
func (s *OrderService) CountOpen(ctx context.Context, userID string) (int64, error) {
	return s.countGroup(ctx, userID, openStatuses)
}

// CountClosed counts the user's completed orders, on either side of the
// transaction.
func (s *OrderService) CountClosed(ctx context.Context, userID string) (int64, error) {
	return s.countGroup(ctx, userID, closedStatuses)
}

func (s *OrderService) countGroup(ctx context.Context, userID string, statuses []string) (int64, error) {
	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return repo.CountOrdersByStatuses(ctx, s.DB, userID, statuses)
}
