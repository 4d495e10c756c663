package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/coordinator"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/events"
)

// unitResolver maps every activity to exactly its raw value in kg.
type unitResolver struct{}

func (unitResolver) Resolve(_ context.Context, _, _ string, value float64, _ string) (float64, error) {
	return value, nil
}

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	statements := []string{
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
		`CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY,
			user_id BIGINT NOT NULL,
			badge_id TEXT NOT NULL,
			bonus_points BIGINT NOT NULL DEFAULT 0,
			unlocked_at TIMESTAMP,
			UNIQUE (user_id, badge_id)
		)`,
		`CREATE TABLE IF NOT EXISTS eco_events (
			id INTEGER PRIMARY KEY,
			user_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP,
			UNIQUE (user_id, dedupe_key)
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func newLedgerService(t *testing.T, db *gorm.DB, at time.Time) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{
		db:          db,
		log:         zap.NewNop(),
		genID:       node,
		coordinator: coordinator.New(),
		resolver:    unitResolver{},
		outbox:      events.NewOutbox(db, node),
		clock:       clock.Fixed{At: at},
	}
}

var testDay = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestSubmitAppendsAndScores(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID:       "42",
		Category:     "transport",
		ActivityType: "car_petrol",
		Value:        2.1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// floor(2.1 * 10 * 1.2) = 25
	if resp.PointsEarned != 25 {
		t.Fatalf("points earned = %d, want 25", resp.PointsEarned)
	}
	if resp.Aggregate.EcoPoints != 25 {
		t.Fatalf("eco points = %d, want 25", resp.Aggregate.EcoPoints)
	}
	if resp.Aggregate.Level != 1 {
		t.Fatalf("level = %d, want 1", resp.Aggregate.Level)
	}
	if resp.Aggregate.TotalCo2SavedKg != 2.1 {
		t.Fatalf("total co2 = %v, want 2.1", resp.Aggregate.TotalCo2SavedKg)
	}
	if resp.Aggregate.Streak != 1 {
		t.Fatalf("streak = %d, want 1", resp.Aggregate.Streak)
	}
	if resp.Entry.Source != activitydomain.SourceManual {
		t.Fatalf("source = %q, want manual default", resp.Entry.Source)
	}
}

func TestSubmitConcurrentSameUser(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	const submits = 50
	var wg sync.WaitGroup
	errs := make(chan error, submits)
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
				UserID:       "42",
				Category:     "food",
				ActivityType: "beef",
				Value:        1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	// Each submit is worth floor(1 * 10 * 1.0) = 10 points; none may be lost.
	var agg struct {
		EcoPoints       int64
		TotalCo2SavedKg float64
	}
	if err := db.Raw(`SELECT eco_points, total_co2_saved_kg FROM user_aggregates WHERE user_id = 42`).Scan(&agg).Error; err != nil {
		t.Fatalf("load aggregate: %v", err)
	}
	if agg.EcoPoints != submits*10 {
		t.Fatalf("eco points = %d, want %d", agg.EcoPoints, submits*10)
	}
	if agg.TotalCo2SavedKg != submits {
		t.Fatalf("total co2 = %v, want %d", agg.TotalCo2SavedKg, submits)
	}
}

func TestSubmitStreakTransitions(t *testing.T) {
	db := setupLedgerTestDB(t)
	// One service, one snowflake node: rebuilding the node per submit can
	// reissue an id within the same millisecond and break the primary key.
	svc := newLedgerService(t, db, testDay)

	seen := make(map[snowflake.ID]bool)
	submitOn := func(day time.Time) *activitydomain.SubmitResponse {
		svc.clock = clock.Fixed{At: day}
		resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
			UserID:       "7",
			Category:     "energy",
			ActivityType: "electricity",
			Value:        1,
		})
		if err != nil {
			t.Fatalf("submit on %v: %v", day, err)
		}
		if seen[resp.Entry.ID] {
			t.Fatalf("entry id %s issued twice", resp.Entry.ID)
		}
		seen[resp.Entry.ID] = true
		return resp
	}

	if resp := submitOn(testDay); resp.Aggregate.Streak != 1 {
		t.Fatalf("day 1 streak = %d, want 1", resp.Aggregate.Streak)
	}
	if resp := submitOn(testDay.AddDate(0, 0, 1)); resp.Aggregate.Streak != 2 {
		t.Fatalf("day 2 streak = %d, want 2", resp.Aggregate.Streak)
	}
	if resp := submitOn(testDay.AddDate(0, 0, 1)); resp.Aggregate.Streak != 2 {
		t.Fatalf("second submit same day streak = %d, want 2", resp.Aggregate.Streak)
	}
	resp := submitOn(testDay.AddDate(0, 0, 5))
	if resp.Aggregate.Streak != 1 {
		t.Fatalf("post-gap streak = %d, want 1", resp.Aggregate.Streak)
	}
	if resp.Aggregate.LongestStreak != 2 {
		t.Fatalf("longest streak = %d, want 2", resp.Aggregate.LongestStreak)
	}
}

func TestSubmitValidation(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)
	future := testDay.Add(time.Hour)

	cases := []struct {
		name string
		req  activitydomain.SubmitRequest
		want error
	}{
		{"missing user", activitydomain.SubmitRequest{Category: "food", ActivityType: "beef", Value: 1}, activitydomain.ErrInvalidUser},
		{"bad category", activitydomain.SubmitRequest{UserID: "1", Category: "shopping", ActivityType: "x", Value: 1}, activitydomain.ErrInvalidCategory},
		{"bad source", activitydomain.SubmitRequest{UserID: "1", Category: "food", ActivityType: "beef", Value: 1, Source: "carrier_pigeon"}, activitydomain.ErrInvalidSource},
		{"negative value", activitydomain.SubmitRequest{UserID: "1", Category: "food", ActivityType: "beef", Value: -1}, activitydomain.ErrInvalidValue},
		{"missing type", activitydomain.SubmitRequest{UserID: "1", Category: "food", Value: 1}, activitydomain.ErrInvalidEntry},
		{"future timestamp", activitydomain.SubmitRequest{UserID: "1", Category: "food", ActivityType: "beef", Value: 1, Timestamp: &future}, activitydomain.ErrInvalidTimestamp},
	}
	for _, tc := range cases {
		if _, err := svc.Submit(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestEditRefolds(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID:       "42",
		Category:     "transport",
		ActivityType: "car_petrol",
		Value:        10,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	newValue := 20.0
	agg, err := svc.Edit(context.Background(), "42", resp.Entry.ID.String(), activitydomain.Patch{Value: &newValue})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	// floor(20 * 10 * 1.2) = 240, fully recomputed from the ledger.
	if agg.EcoPoints != 240 {
		t.Fatalf("eco points = %d, want 240", agg.EcoPoints)
	}
	if agg.TotalCo2SavedKg != 20 {
		t.Fatalf("total co2 = %v, want 20", agg.TotalCo2SavedKg)
	}
}

func TestEditPreservesAchievementBonus(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID:       "42",
		Category:     "food",
		ActivityType: "beef",
		Value:        5,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO achievements (id, user_id, badge_id, bonus_points, unlocked_at) VALUES (1, 42, 'first-step', 10, ?)`,
		testDay,
	).Error; err != nil {
		t.Fatalf("insert achievement: %v", err)
	}

	newValue := 2.0
	agg, err := svc.Edit(context.Background(), "42", resp.Entry.ID.String(), activitydomain.Patch{Value: &newValue})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	// floor(2 * 10 * 1.0) = 20 from the ledger plus the snapshotted bonus.
	if agg.EcoPoints != 30 {
		t.Fatalf("eco points = %d, want 30", agg.EcoPoints)
	}
}

func TestEditCategoryReresolves(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID:       "42",
		Category:     "food",
		ActivityType: "beef",
		Value:        1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	category := "transport"
	agg, err := svc.Edit(context.Background(), "42", resp.Entry.ID.String(), activitydomain.Patch{Category: &category})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	// Same CO2, transport multiplier now applies: floor(1 * 10 * 1.2) = 12.
	if agg.EcoPoints != 12 {
		t.Fatalf("eco points = %d, want 12", agg.EcoPoints)
	}
}

func TestEditEmptyPatch(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	if _, err := svc.Edit(context.Background(), "42", "1", activitydomain.Patch{}); !errors.Is(err, activitydomain.ErrEmptyPatch) {
		t.Fatalf("err = %v, want ErrEmptyPatch", err)
	}
}

func TestEditNotFound(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	value := 3.0
	if _, err := svc.Edit(context.Background(), "42", "999", activitydomain.Patch{Value: &value}); !errors.Is(err, activitydomain.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestDeleteRefolds(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	first, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID: "42", Category: "food", ActivityType: "beef", Value: 3,
	})
	if err != nil {
		t.Fatalf("submit first: %v", err)
	}
	if _, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID: "42", Category: "food", ActivityType: "rice", Value: 2,
	}); err != nil {
		t.Fatalf("submit second: %v", err)
	}

	agg, err := svc.Delete(context.Background(), "42", first.Entry.ID.String())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if agg.EcoPoints != 20 {
		t.Fatalf("eco points = %d, want 20 from the remaining entry", agg.EcoPoints)
	}
	if agg.TotalCo2SavedKg != 2 {
		t.Fatalf("total co2 = %v, want 2", agg.TotalCo2SavedKg)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM activity_entries WHERE user_id = 42`).Scan(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("entries = %d, want 1", count)
	}
}

func TestDeleteNotFound(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	if _, err := svc.Delete(context.Background(), "42", "999"); !errors.Is(err, activitydomain.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestSubmitWithPrecomputedCo2(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	precomputed := 4.5678
	resp, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID:           "42",
		Category:         "transport",
		ActivityType:     "car_petrol",
		Value:            30,
		Source:           "gps",
		PrecomputedCo2Kg: &precomputed,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Entry.Co2Kg != 4.568 {
		t.Fatalf("co2 = %v, want 4.568 rounded at storage", resp.Entry.Co2Kg)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(t, db, testDay)

	older := testDay.Add(-48 * time.Hour)
	if _, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID: "42", Category: "food", ActivityType: "beef", Value: 1, Timestamp: &older,
	}); err != nil {
		t.Fatalf("submit older: %v", err)
	}
	if _, err := svc.Submit(context.Background(), activitydomain.SubmitRequest{
		UserID: "42", Category: "food", ActivityType: "rice", Value: 1,
	}); err != nil {
		t.Fatalf("submit newer: %v", err)
	}

	entries, err := svc.List(context.Background(), activitydomain.ListRequest{UserID: "42"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ActivityType != "rice" {
		t.Fatalf("first entry = %q, want the newest", entries[0].ActivityType)
	}

	from := testDay.Add(-time.Hour)
	windowed, err := svc.List(context.Background(), activitydomain.ListRequest{UserID: "42", From: &from})
	if err != nil {
		t.Fatalf("windowed list: %v", err)
	}
	if len(windowed) != 1 {
		t.Fatalf("windowed entries = %d, want 1", len(windowed))
	}
}
