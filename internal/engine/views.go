package engine

import (
	"fmt"
	"time"

	"solofeed/internal/logging"
	"solofeed/internal/model"
	"solofeed/internal/schedule"
)

// View names an active screen that drives periodic activity.
type View string

const (
	ViewFeed     View = "feed"
	ViewActivity View = "activity"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewFeed, ViewActivity:
		return View(s), nil
	}
	return "", model.NewValidationError("view", fmt.Sprintf("unknown view %q", s))
}

func (e *Engine) interval(v View) time.Duration {
	if v == ViewActivity {
		return e.cfg.ActivityTickInterval
	}
	return e.cfg.FeedTickInterval
}

// OpenView starts the periodic tick of v. The caller cancels the returned
// handle when the view goes away; tasks already queued still complete.
// Opening the feed seeds stories when there are none; opening the activity
// view marks notifications seen.
func (e *Engine) OpenView(v View) *schedule.Handle {
	switch v {
	case ViewFeed:
		if e.stories != nil && len(e.stories.All()) == 0 {
			e.stories.RegenerateForSyntheticActors()
		}
	case ViewActivity:
		e.feed.MarkNotificationsSeen()
	}
	logging.Debug("view_open", map[string]any{"view": string(v)})
	return e.loop.Every(e.interval(v), func() { e.tick(v) })
}

// tick runs one background activity unless it falls in quiet hours or the
// budget is spent. Only ticks that engage count against the budget.
func (e *Engine) tick(v View) {
	now := e.loop.Now()
	if schedule.IsQuiet(now, e.cfg.QuietHours) {
		logging.Debug("tick_quiet", map[string]any{"view": string(v)})
		return
	}
	ok, err := e.budget.Allow(e.ctx, now)
	if err != nil {
		logging.Warn("tick_budget", map[string]any{"view": string(v), "error": err.Error()})
		return
	}
	if !ok {
		logging.Debug("tick_budget_exhausted", map[string]any{"view": string(v)})
		return
	}
	if !e.SimulateActivity() {
		return
	}
	if err := e.budget.Record(e.ctx, now); err != nil {
		logging.Warn("tick_budget_record", map[string]any{"error": err.Error()})
	}
}

// Refresh is a manual pull-to-refresh. The feed view also regenerates stories.
// The activity itself runs on the loop.
func (e *Engine) Refresh(v View) {
	if v == ViewFeed && e.stories != nil {
		e.stories.RegenerateForSyntheticActors()
	}
	e.loop.After(0, func() { e.SimulateActivity() })
}
