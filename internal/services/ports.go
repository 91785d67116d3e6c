package services

import (
	"context"
	"time"

	"painel/internal/core"
	applog "painel/internal/log"
)

// DocumentStore is the read-modify-write primitive the services run on.
type DocumentStore interface {
	Load(ctx context.Context) (*core.Document, error)
	Mutate(ctx context.Context, fn func(*core.Document) error) (*core.Document, error)
}

// EventPublisher delivers change notifications after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, ev core.Event) error
}

// publish is best-effort: the document is already persisted, so a failed
// notification is logged and never returned to the caller.
func publish(ctx context.Context, p EventPublisher, logger *applog.Logger, now time.Time, ev core.Event) {
	if p == nil {
		return
	}
	ev.Timestamp = now.UTC()
	if err := p.Publish(ctx, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			applog.FieldEventType, string(ev.Type),
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err)
	}
}
