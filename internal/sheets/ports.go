package sheets

import (
	"context"
	"time"

	"painel/internal/core"
)

// Ports for outbound adapters.
type (
	// EventWriter appends one audit row per dashboard event.
	EventWriter interface {
		AppendEvent(ctx context.Context, ev core.Event) (rowRef string, err error)
	}
)

// Header is the column layout of the audit sheet.
var Header = []any{"timestamp", "type", "id", "amount", "seller", "client", "date"}

// EventRow renders ev in Header order. Events without an entry leave the
// entry columns blank.
func EventRow(ev core.Event) []any {
	row := []any{ev.Timestamp.UTC().Format(time.RFC3339), string(ev.Type), "", "", "", "", ""}
	if e := ev.Entry; e != nil {
		client := e.Client
		if client == "" {
			client = e.Note
		}
		row[2], row[3], row[4], row[5], row[6] = e.ID, e.Amount, e.Seller, client, e.Date
	}
	return row
}
