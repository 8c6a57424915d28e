// Package engage caps background engagement with hourly and daily budgets.
package engage

import (
	"context"
	"time"

	"solofeed/internal/config"
)

// ActionTick is the action type recorded for each periodic-tick engagement.
const ActionTick = "tick"

// ActionLog is the durable counter behind a Budget.
type ActionLog interface {
	PutAction(ctx context.Context, ts time.Time, typ string) error
	CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error)
}

// Budget limits how many actions of one type run per UTC hour and day.
// A zero limit is unlimited.
type Budget struct {
	log        ActionLog
	typ        string
	maxPerHour int
	maxPerDay  int
}

func NewBudget(log ActionLog, typ string, cfg config.EngagementConfig) *Budget {
	return &Budget{log: log, typ: typ, maxPerHour: cfg.MaxPerHour, maxPerDay: cfg.MaxPerDay}
}

// Allow checks the hour and day windows containing now.
func (b *Budget) Allow(ctx context.Context, now time.Time) (bool, error) {
	if b == nil || (b.maxPerHour <= 0 && b.maxPerDay <= 0) {
		return true, nil
	}
	now = now.UTC()
	startHour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, time.UTC)
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if b.maxPerHour > 0 {
		n, err := b.log.CountActionsWithin(ctx, startHour, startHour.Add(time.Hour), b.typ)
		if err != nil {
			return false, err
		}
		if n >= b.maxPerHour {
			return false, nil
		}
	}
	if b.maxPerDay > 0 {
		n, err := b.log.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), b.typ)
		if err != nil {
			return false, err
		}
		if n >= b.maxPerDay {
			return false, nil
		}
	}
	return true, nil
}

// Record counts one action at now.
func (b *Budget) Record(ctx context.Context, now time.Time) error {
	if b == nil {
		return nil
	}
	return b.log.PutAction(ctx, now, b.typ)
}
