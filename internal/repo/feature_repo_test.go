package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestGetOrCreateFeature_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := GetOrCreateFeature(ctx, db, "Logo Design")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := GetOrCreateFeature(ctx, db, "Logo Design")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}

	// Surrounding whitespace is normalized before matching.
	third, err := GetOrCreateFeature(ctx, db, "  Logo Design  ")
	if err != nil {
		t.Fatalf("trimmed lookup: %v", err)
	}
	if third.ID != first.ID {
		t.Fatalf("trimmed name created a duplicate: %s vs %s", third.ID, first.ID)
	}

	n, err := CountFeatures(ctx, db)
	if err != nil || n != 1 {
		t.Fatalf("count = %d err=%v, want 1", n, err)
	}
}

func TestResolveFeatures_DedupesPreservingOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := ResolveFeatures(ctx, db, []string{"Logo", "Flyer", "Logo", " Flyer "})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved = %d, want 2", len(got))
	}
	if got[0].Name != "Logo" || got[1].Name != "Flyer" {
		t.Fatalf("order = %s, %s", got[0].Name, got[1].Name)
	}

	n, err := CountFeatures(ctx, db)
	if err != nil || n != 2 {
		t.Fatalf("count = %d err=%v, want 2", n, err)
	}
}
