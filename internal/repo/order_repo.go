// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// snapshot model.
//
// Orders are created with their feature links in one insert (GORM persists
// the many-to-many rows alongside the order). After creation only the status
// column changes; the priced snapshot fields stay immutable.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// CreateOrder inserts a new Order row together with its copied feature links.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches a single order by ID with features preloaded, or
// ErrNotFound if missing.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Features").
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrdersForUser returns orders where the user appears as either the
// customer or the business counterparty, most recent first.
func ListOrdersForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("Features").
		Where("customer_user_id = ? OR business_user_id = ?", userID, userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListAllOrders returns every order, most recent first. Reserved for
// administrative requesters.
func ListAllOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("Features").
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateOrderStatus sets the status column of an order. Returns ErrNotFound
// when the order does not exist.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOrder removes an order row after clearing its feature links.
func DeleteOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if err := db.WithContext(ctx).Model(o).Association("Features").Clear(); err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(o).Error
}

// CountOrdersByStatuses counts orders in any of the given statuses where the
// user appears as either party.
func CountOrdersByStatuses(ctx context.Context, db *gorm.DB, userID string, statuses []string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("(customer_user_id = ? OR business_user_id = ?) AND status IN ?", userID, userID, statuses).
		Count(&total).Error
	return total, err
}
