package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/cache"
	factordomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor/domain"
)

func setupFactorTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS emission_factors (
			id INTEGER PRIMARY KEY,
			category TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			region TEXT,
			factor DOUBLE PRECISION NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("create emission_factors: %v", err)
	}
	return db
}

func newTestResolver(db *gorm.DB) factordomain.Resolver {
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		cache: cache.NewFactorCache(),
	}
}

func insertFactor(t *testing.T, db *gorm.DB, id int64, category, activityType string, region *string, factor float64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO emission_factors (id, category, activity_type, region, factor, is_active)
		 VALUES (?, ?, ?, ?, ?, TRUE)`,
		id, category, activityType, region, factor,
	).Error; err != nil {
		t.Fatalf("insert factor: %v", err)
	}
}

func TestResolveGlobalFactor(t *testing.T) {
	db := setupFactorTestDB(t)
	global := "global"
	insertFactor(t, db, 1, "transport", "car_petrol", &global, 0.21)

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "transport", "car_petrol", 10, "fr")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 2.1 {
		t.Fatalf("co2 = %v, want 2.1", got)
	}
}

func TestResolveRegionOverridesGlobal(t *testing.T) {
	db := setupFactorTestDB(t)
	global := "global"
	fr := "fr"
	insertFactor(t, db, 1, "energy", "electricity", &global, 0.233)
	insertFactor(t, db, 2, "energy", "electricity", &fr, 0.056)

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "energy", "electricity", 100, "fr")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 5.6 {
		t.Fatalf("co2 = %v, want 5.6 from the regional factor", got)
	}
}

func TestResolveBuiltinDefault(t *testing.T) {
	db := setupFactorTestDB(t)

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "transport", "train", 100, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 4.1 {
		t.Fatalf("co2 = %v, want 4.1 from built-in defaults", got)
	}
}

func TestResolveFallback(t *testing.T) {
	db := setupFactorTestDB(t)

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "other", "unknown_thing", 10, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 1.0 {
		t.Fatalf("co2 = %v, want 1.0 from the 0.1 fallback", got)
	}
}

func TestResolveRoundsToThreeDecimals(t *testing.T) {
	db := setupFactorTestDB(t)
	global := "global"
	insertFactor(t, db, 1, "food", "beef", &global, 27.0)

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "food", "beef", 0.3333, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 8.999 {
		t.Fatalf("co2 = %v, want 8.999", got)
	}
}

func TestResolveInactiveFactorIgnored(t *testing.T) {
	db := setupFactorTestDB(t)
	global := "global"
	insertFactor(t, db, 1, "other", "unknown_thing", &global, 5.0)
	if err := db.Exec(`UPDATE emission_factors SET is_active = FALSE WHERE id = 1`).Error; err != nil {
		t.Fatalf("deactivate factor: %v", err)
	}

	svc := newTestResolver(db)
	got, err := svc.Resolve(context.Background(), "other", "unknown_thing", 10, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 1.0 {
		t.Fatalf("co2 = %v, want the fallback because the row is inactive", got)
	}
}

func TestResolveInvalidValue(t *testing.T) {
	db := setupFactorTestDB(t)
	svc := newTestResolver(db)

	for _, value := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := svc.Resolve(context.Background(), "transport", "bus", value, ""); !errors.Is(err, factordomain.ErrInvalidValue) {
			t.Fatalf("Resolve(%v) err = %v, want ErrInvalidValue", value, err)
		}
	}
}

func TestResolveCachesLookups(t *testing.T) {
	db := setupFactorTestDB(t)
	global := "global"
	insertFactor(t, db, 1, "transport", "bus", &global, 0.105)

	svc := newTestResolver(db)
	if _, err := svc.Resolve(context.Background(), "transport", "bus", 1, ""); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// A second resolve must come from cache, not the deleted row.
	if err := db.Exec(`DELETE FROM emission_factors`).Error; err != nil {
		t.Fatalf("clear factors: %v", err)
	}
	got, err := svc.Resolve(context.Background(), "transport", "bus", 10, "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if got != 1.05 {
		t.Fatalf("co2 = %v, want 1.05 from cache", got)
	}
}
