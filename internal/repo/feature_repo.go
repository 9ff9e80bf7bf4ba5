// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the feature registry: deduplicated named
// tags resolved through get-or-create semantics.
//
// Identity is the trimmed name, matched case-sensitively against the unique
// "name" column. Repeated calls with the same name always return the same
// row; callers are responsible for rejecting blank names before they reach
// the registry.
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-marketplace-backend/internal/domain"
)

// GetOrCreateFeature resolves name to its Feature row, inserting it when
// absent. The name is trimmed before lookup. A lost insert race against a
// concurrent creator is resolved by re-fetching the winner, so the call is
// idempotent under concurrency.
func GetOrCreateFeature(ctx context.Context, db *gorm.DB, name string) (*domain.Feature, error) {
	name = strings.TrimSpace(name)

	var f domain.Feature
	err := db.WithContext(ctx).Where("name = ?", name).First(&f).Error
	if err == nil {
		return &f, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	f = domain.Feature{ID: uuid.NewString(), Name: name}
	if err := db.WithContext(ctx).Create(&f).Error; err != nil {
		if IsUniqueViolation(err) {
			// Lost the race; the winner's row is authoritative.
			var won domain.Feature
			if ferr := db.WithContext(ctx).Where("name = ?", name).First(&won).Error; ferr == nil {
				return &won, nil
			}
		}
		return nil, err
	}
	return &f, nil
}

// ResolveFeatures maps a list of feature names to Feature rows via
// GetOrCreateFeature, preserving input order and de-duplicating repeated
// names within the list.
func ResolveFeatures(ctx context.Context, db *gorm.DB, names []string) ([]domain.Feature, error) {
	out := make([]domain.Feature, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		f, err := GetOrCreateFeature(ctx, db, n)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, nil
}

// CountFeatures returns the total number of registered features.
func CountFeatures(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Feature{}).Count(&total).Error
	return total, err
}
