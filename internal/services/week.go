package services

import (
	"context"
	"fmt"
	"time"

	"painel/internal/clock"
	"painel/internal/core"
	applog "painel/internal/log"
)

// WeekSource selects which collection feeds the weekly table.
type WeekSource string

const (
	SourceHistory WeekSource = "history"
	SourceEntries WeekSource = "entries"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// WeekConfig picks the buckets shown and their source. Days empty means all
// seven; their order always follows the clock's week start.
type WeekConfig struct {
	Days   []string
	Source WeekSource
}

// WeekBucketizer builds the weekly table. Week boundaries and day buckets
// both come from the same clock, so they share one week-start anchor.
type WeekBucketizer struct {
	store  DocumentStore
	clock  *clock.Clock
	order  []string
	source WeekSource
	logger *applog.Logger
}

func NewWeekBucketizer(store DocumentStore, clk *clock.Clock, cfg WeekConfig, logger *applog.Logger) *WeekBucketizer {
	if logger == nil {
		logger = applog.Discard()
	}
	if cfg.Source == "" {
		cfg.Source = SourceHistory
	}

	order := clk.DayKeys()
	if len(cfg.Days) > 0 {
		wanted := make(map[string]bool, len(cfg.Days))
		for _, d := range cfg.Days {
			wanted[d] = true
		}
		filtered := order[:0]
		for _, k := range order {
			if wanted[k] {
				filtered = append(filtered, k)
			}
		}
		order = filtered
	}

	return &WeekBucketizer{
		store:  store,
		clock:  clk,
		order:  order,
		source: cfg.Source,
		logger: logger.WithComponent(applog.ComponentWeek),
	}
}

// Order returns the configured bucket keys in display order.
func (b *WeekBucketizer) Order() []string {
	return append([]string(nil), b.order...)
}

// WeekView groups the week containing date (YYYY-MM-DD, local; empty means
// today) into day buckets. Records on days without a bucket are skipped.
func (b *WeekBucketizer) WeekView(ctx context.Context, date string) (core.WeekView, error) {
	base := b.clock.Now()
	if date != "" {
		parsed, err := b.clock.ParseDate(date)
		if err != nil {
			return core.WeekView{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, err)
		}
		base = parsed
	}
	start, end := b.clock.WeekRange(base)

	doc, err := b.store.Load(ctx)
	if err != nil {
		return core.WeekView{}, fmt.Errorf("load document: %w", err)
	}

	view := core.WeekView{
		Range: core.WeekRange{
			StartISO: start.UTC().Format(isoMillis),
			EndISO:   end.UTC().Format(isoMillis),
		},
		Days:  make(map[string]*core.DayBucket, len(b.order)),
		Order: b.Order(),
	}
	for _, k := range b.order {
		view.Days[k] = &core.DayBucket{Items: []core.DayItem{}}
	}

	records := doc.History
	if b.source == SourceEntries {
		records = doc.Entries
	}

	skipped := 0
	for _, e := range records {
		ts := clock.FromMillis(e.TS)
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		bucket, ok := view.Days[b.clock.DayKey(ts)]
		if !ok {
			skipped++
			continue
		}
		client := e.Client
		if client == "" {
			client = e.Note
		}
		bucket.Items = append(bucket.Items, core.DayItem{Client: client, Amount: e.Amount})
		bucket.Total = core.AddAmount(bucket.Total, e.Amount)
		view.Subtotal = core.AddAmount(view.Subtotal, e.Amount)
	}

	if skipped > 0 {
		b.logger.DebugContext(ctx, "Records outside the bucket grid skipped",
			"skipped", skipped,
			"week_start", start.Format(time.DateOnly))
	}
	return view, nil
}
