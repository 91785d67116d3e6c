package services

import (
	"context"
	"fmt"
	"math"

	"painel/internal/clock"
	"painel/internal/core"
	applog "painel/internal/log"
)

// Aggregator computes week and month progress over the history and manages
// goals and arc checkpoints.
type Aggregator struct {
	store  DocumentStore
	clock  *clock.Clock
	events EventPublisher
	logger *applog.Logger
}

func NewAggregator(store DocumentStore, clk *clock.Clock, events EventPublisher, logger *applog.Logger) *Aggregator {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Aggregator{
		store:  store,
		clock:  clk,
		events: events,
		logger: logger.WithComponent(applog.ComponentAggregator),
	}
}

// SetGoals stores each supplied goal that is a finite positive number once
// rounded to whole BRL. Anything else is ignored without error.
func (a *Aggregator) SetGoals(ctx context.Context, weekly, monthly *float64) (core.Goals, error) {
	w, setW := goalValue(weekly)
	m, setM := goalValue(monthly)

	doc, err := a.store.Mutate(ctx, func(doc *core.Document) error {
		if setW {
			doc.WeeklyGoalBRL = w
		}
		if setM {
			doc.MonthlyGoalBRL = m
		}
		return nil
	})
	if err != nil {
		return core.Goals{}, fmt.Errorf("set goals: %w", err)
	}

	goals := doc.Goals()
	a.logger.InfoContext(ctx, "Goals updated",
		applog.FieldOperation, applog.OpGoals,
		"weekly_goal", goals.Weekly,
		"monthly_goal", goals.Monthly)
	publish(ctx, a.events, a.logger, a.clock.Now(), core.Event{Type: core.EventGoalsUpdated, Goals: &goals})

	return goals, nil
}

func goalValue(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, false
	}
	rounded := math.Round(*v)
	return rounded, rounded > 0
}

// ResetWeekArc moves the week checkpoint to now and returns it.
func (a *Aggregator) ResetWeekArc(ctx context.Context) (int64, error) {
	now := a.clock.Now()
	ts := clock.Millis(now)
	if _, err := a.store.Mutate(ctx, func(doc *core.Document) error {
		doc.WeekResetTs = ts
		return nil
	}); err != nil {
		return 0, fmt.Errorf("reset week arc: %w", err)
	}

	a.logger.InfoContext(ctx, "Week arc reset", applog.FieldOperation, applog.OpReset, "week_reset_ts", ts)
	publish(ctx, a.events, a.logger, now, core.Event{Type: core.EventWeekArcReset, WeekResetTs: ts})
	return ts, nil
}

// ResetMonthArc moves the month checkpoint to now and returns it.
func (a *Aggregator) ResetMonthArc(ctx context.Context) (int64, error) {
	now := a.clock.Now()
	ts := clock.Millis(now)
	if _, err := a.store.Mutate(ctx, func(doc *core.Document) error {
		doc.MonthResetTs = ts
		return nil
	}); err != nil {
		return 0, fmt.Errorf("reset month arc: %w", err)
	}

	a.logger.InfoContext(ctx, "Month arc reset", applog.FieldOperation, applog.OpReset, "month_reset_ts", ts)
	publish(ctx, a.events, a.logger, now, core.Event{Type: core.EventMonthArcReset, MonthResetTs: ts})
	return ts, nil
}

// Summary totals the history from each arc's effective start: the later of
// the calendar start and the reset checkpoint.
func (a *Aggregator) Summary(ctx context.Context) (core.Summary, error) {
	doc, err := a.store.Load(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load document: %w", err)
	}

	weekStart := max(clock.Millis(a.clock.StartOfWeek()), doc.WeekResetTs)
	monthStart := max(clock.Millis(a.clock.StartOfMonth()), doc.MonthResetTs)

	return core.Summary{
		Week:  progress(doc.History, weekStart, doc.WeeklyGoalBRL),
		Month: progress(doc.History, monthStart, doc.MonthlyGoalBRL),
	}, nil
}

func progress(history []core.Entry, from int64, goal float64) core.Progress {
	var window []core.Entry
	for _, e := range history {
		if e.TS >= from {
			window = append(window, e)
		}
	}
	total := core.SumAmounts(window)
	return core.Progress{
		Total:      total,
		Goal:       goal,
		Percentage: core.Percentage(total, goal),
	}
}
