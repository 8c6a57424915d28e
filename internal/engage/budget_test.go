package engage

import (
	"context"
	"testing"
	"time"

	"solofeed/internal/config"
	"solofeed/internal/store/sqlitekv"
)

func openDB(t *testing.T) *sqlitekv.DB {
	t.Helper()
	db, err := sqlitekv.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBudgetRespectsHourlyAndDailyLimits(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBudget(db, ActionTick, config.EngagementConfig{MaxPerHour: 2, MaxPerDay: 3})

	if ok, err := b.Allow(ctx, now); err != nil || !ok {
		t.Fatalf("expected fresh budget to allow, ok=%v err=%v", ok, err)
	}
	for _, at := range []time.Duration{0, 5 * time.Minute} {
		if err := b.Record(ctx, now.Add(at)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if ok, _ := b.Allow(ctx, now.Add(10*time.Minute)); ok {
		t.Fatalf("expected hourly budget to be spent")
	}
	if err := b.Record(ctx, now.Add(65*time.Minute)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ok, _ := b.Allow(ctx, now.Add(70*time.Minute)); ok {
		t.Fatalf("expected daily budget to be spent")
	}
	if ok, _ := b.Allow(ctx, now.Add(24*time.Hour)); !ok {
		t.Fatalf("expected budget to reset after a day")
	}
}

func TestBudgetUnlimitedAndNil(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	b := NewBudget(db, ActionTick, config.EngagementConfig{})
	for i := 0; i < 5; i++ {
		if err := b.Record(ctx, time.Now()); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if ok, err := b.Allow(ctx, time.Now()); err != nil || !ok {
		t.Fatalf("zero limits should be unlimited, ok=%v err=%v", ok, err)
	}

	var none *Budget
	if ok, err := none.Allow(ctx, time.Now()); err != nil || !ok {
		t.Fatalf("nil budget should allow, ok=%v err=%v", ok, err)
	}
	if err := none.Record(ctx, time.Now()); err != nil {
		t.Fatalf("nil budget record: %v", err)
	}
}
