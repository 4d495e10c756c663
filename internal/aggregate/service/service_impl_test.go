package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupAggregateTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_aggregates (
			user_id INTEGER PRIMARY KEY,
			eco_points BIGINT NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			total_co2_saved_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_active_date TIMESTAMP,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS activity_entries (
			id INTEGER PRIMARY KEY,
			user_id BIGINT NOT NULL,
			category TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			raw_value DOUBLE PRECISION NOT NULL,
			co2_kg DOUBLE PRECISION NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			timestamp TIMESTAMP NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func newAggregateService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		clock: clock.Fixed{At: testNow},
	}
}

func insertEntry(t *testing.T, db *gorm.DB, id, userID int64, category string, co2 float64, ts time.Time) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO activity_entries (id, user_id, category, activity_type, raw_value, co2_kg, timestamp)
		 VALUES (?, ?, ?, 'x', 1, ?, ?)`,
		id, userID, category, co2, ts,
	).Error; err != nil {
		t.Fatalf("insert entry: %v", err)
	}
}

func TestGetZeroStateForNewUser(t *testing.T) {
	db := setupAggregateTestDB(t)
	svc := newAggregateService(db)

	resp, err := svc.Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.EcoPoints != 0 || resp.Level != 1 || resp.Streak != 0 {
		t.Fatalf("zero state = %+v, want points 0, level 1, streak 0", resp)
	}
}

func TestGetDecaysLapsedStreak(t *testing.T) {
	db := setupAggregateTestDB(t)
	stale := testNow.AddDate(0, 0, -3)
	if err := db.Exec(
		`INSERT INTO user_aggregates (user_id, eco_points, level, total_co2_saved_kg, streak, longest_streak, last_active_date)
		 VALUES (42, 500, 1, 12.345, 5, 8, ?)`,
		stale,
	).Error; err != nil {
		t.Fatalf("insert aggregate: %v", err)
	}

	svc := newAggregateService(db)
	resp, err := svc.Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.Streak != 0 {
		t.Fatalf("streak = %d, want 0 after a missed day", resp.Streak)
	}
	if resp.LongestStreak != 8 {
		t.Fatalf("longest streak = %d, want the stored 8", resp.LongestStreak)
	}
	if resp.TotalCo2SavedKg != 12.35 {
		t.Fatalf("total co2 = %v, want 12.35 rendered to two decimals", resp.TotalCo2SavedKg)
	}
}

func TestGetInvalidUser(t *testing.T) {
	db := setupAggregateTestDB(t)
	svc := newAggregateService(db)

	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, aggregatedomain.ErrInvalidUser) {
		t.Fatalf("err = %v, want ErrInvalidUser", err)
	}
}

func TestSummaryFoldsWindow(t *testing.T) {
	db := setupAggregateTestDB(t)
	insertEntry(t, db, 1, 42, "transport", 2.5, testNow.AddDate(0, 0, -1))
	insertEntry(t, db, 2, 42, "food", 1.5, testNow.AddDate(0, 0, -2))
	// Outside the default thirty-day window.
	insertEntry(t, db, 3, 42, "energy", 100, testNow.AddDate(0, 0, -60))

	svc := newAggregateService(db)
	resp, err := svc.Summary(context.Background(), aggregatedomain.SummaryRequest{UserID: "42"})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if resp.TotalCo2Kg != 4 {
		t.Fatalf("total = %v, want 4 inside the window", resp.TotalCo2Kg)
	}
	if resp.CategoryBreakdown["transport"] != 2.5 || resp.CategoryBreakdown["food"] != 1.5 {
		t.Fatalf("breakdown = %v", resp.CategoryBreakdown)
	}
	if len(resp.Series) != 2 {
		t.Fatalf("series buckets = %d, want 2 day buckets", len(resp.Series))
	}
	if resp.Equivalencies.TreeSeedlings == 0 {
		t.Fatalf("equivalencies missing: %+v", resp.Equivalencies)
	}
}

func TestSummaryInvalidWindow(t *testing.T) {
	db := setupAggregateTestDB(t)
	svc := newAggregateService(db)

	from := testNow
	to := testNow.Add(-time.Hour)
	_, err := svc.Summary(context.Background(), aggregatedomain.SummaryRequest{UserID: "42", From: &from, To: &to})
	if !errors.Is(err, aggregatedomain.ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestSummaryInvalidGranularity(t *testing.T) {
	db := setupAggregateTestDB(t)
	svc := newAggregateService(db)

	_, err := svc.Summary(context.Background(), aggregatedomain.SummaryRequest{UserID: "42", Granularity: "hour"})
	if !errors.Is(err, aggregatedomain.ErrInvalidGranularity) {
		t.Fatalf("err = %v, want ErrInvalidGranularity", err)
	}
}

func TestLeaderboardRanksByPoints(t *testing.T) {
	db := setupAggregateTestDB(t)
	if err := db.Exec(
		`INSERT INTO user_aggregates (user_id, eco_points, level) VALUES
		 (1, 100, 1), (2, 900, 1), (3, 2500, 3)`,
	).Error; err != nil {
		t.Fatalf("insert aggregates: %v", err)
	}

	svc := newAggregateService(db)
	board, err := svc.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("rows = %d, want 2", len(board))
	}
	if board[0].UserID != "3" || board[0].Rank != 1 {
		t.Fatalf("first = %+v, want user 3 at rank 1", board[0])
	}
	if board[1].UserID != "2" || board[1].Rank != 2 {
		t.Fatalf("second = %+v, want user 2 at rank 2", board[1])
	}
}
