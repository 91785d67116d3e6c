// Package worker mirrors dashboard events into the spreadsheet audit log.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"painel/internal/core"
	applog "painel/internal/log"
	"painel/internal/sheets"
)

const (
	defaultSeenSize     = 1024
	defaultSeenTTL      = time.Hour
	defaultCleanupEvery = time.Minute
)

// Consumer feeds events to a handler until its context ends.
type Consumer interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, core.Event) error) error
}

// Stats counts what the mirror has done since start.
type Stats struct {
	Mirrored int64
	Skipped  int64
	Failed   int64
}

type Mirror struct {
	writer       sheets.EventWriter
	seen         *seenSet
	cleanupEvery time.Duration
	logger       *applog.Logger

	mirrored atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

type Option func(*Mirror)

// WithDedupe sizes the redelivery filter.
func WithDedupe(size int, ttl time.Duration, now func() time.Time) Option {
	return func(m *Mirror) {
		m.seen = newSeenSet(size, ttl, now)
	}
}

// WithCleanupInterval sets how often expired dedupe keys are dropped.
func WithCleanupInterval(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.cleanupEvery = d
		}
	}
}

func NewMirror(writer sheets.EventWriter, logger *applog.Logger, opts ...Option) *Mirror {
	if logger == nil {
		logger = applog.Discard()
	}
	m := &Mirror{
		writer:       writer,
		seen:         newSeenSet(defaultSeenSize, defaultSeenTTL, nil),
		cleanupEvery: defaultCleanupEvery,
		logger:       logger.WithComponent(applog.ComponentWorker),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleEvent appends ev to the audit sheet once. A returned error asks the
// consumer to redeliver.
func (m *Mirror) HandleEvent(ctx context.Context, ev core.Event) error {
	key := eventKey(ev)
	if m.seen.Contains(key) {
		m.skipped.Add(1)
		m.logger.DebugContext(ctx, "Skipping redelivered event",
			applog.FieldEventType, string(ev.Type),
			"key", key)
		return nil
	}

	ref, err := m.writer.AppendEvent(ctx, ev)
	if err != nil {
		m.failed.Add(1)
		return fmt.Errorf("mirror %s: %w", ev.Type, err)
	}
	m.seen.Add(key)
	m.mirrored.Add(1)

	fields := []any{
		applog.FieldOperation, applog.OpMirror,
		applog.FieldEventType, string(ev.Type),
		"sheets_ref", ref,
	}
	if ev.Entry != nil {
		fields = append(fields, applog.FieldEntryID, ev.Entry.ID)
	}
	m.logger.InfoContext(ctx, "Event mirrored", fields...)
	return nil
}

// Run consumes events and periodically prunes the dedupe filter until ctx is
// cancelled or the consumer fails.
func (m *Mirror) Run(ctx context.Context, consumer Consumer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeEvents(ctx, m.HandleEvent)
	})

	g.Go(func() error {
		ticker := time.NewTicker(m.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := m.seen.CleanExpired(); n > 0 {
					m.logger.DebugContext(ctx, "Pruned dedupe keys", "removed", n)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Mirror) Stats() Stats {
	return Stats{
		Mirrored: m.mirrored.Load(),
		Skipped:  m.skipped.Load(),
		Failed:   m.failed.Load(),
	}
}

// eventKey identifies an event across redeliveries.
func eventKey(ev core.Event) string {
	id := ""
	if ev.Entry != nil {
		id = ev.Entry.ID
	}
	return string(ev.Type) + "|" + id + "|" + strconv.FormatInt(ev.Timestamp.UnixNano(), 10)
}
