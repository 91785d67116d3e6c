package sheets

import (
	"reflect"
	"testing"
	"time"

	"painel/internal/core"
)

func TestEventRow(t *testing.T) {
	ts := time.Date(2025, 1, 15, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	tests := []struct {
		name string
		ev   core.Event
		want []any
	}{
		{
			name: "entry event",
			ev: core.Event{
				Type:      core.EventEntryCreated,
				Entry:     &core.Entry{ID: "abc", Amount: 150.5, Seller: "Ana", Client: "Loja X", Date: "2025-01-15"},
				Timestamp: ts,
			},
			want: []any{"2025-01-15T15:00:00Z", "entry.created", "abc", 150.5, "Ana", "Loja X", "2025-01-15"},
		},
		{
			name: "legacy note",
			ev: core.Event{
				Type:      core.EventEntryDeleted,
				Entry:     &core.Entry{ID: "old", Amount: 1, Note: "Nota"},
				Timestamp: ts,
			},
			want: []any{"2025-01-15T15:00:00Z", "entry.deleted", "old", 1.0, "", "Nota", ""},
		},
		{
			name: "arc reset",
			ev:   core.Event{Type: core.EventWeekArcReset, WeekResetTs: 1, Timestamp: ts},
			want: []any{"2025-01-15T15:00:00Z", "week.reset", "", "", "", "", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EventRow(tt.ev); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EventRow() = %v, want %v", got, tt.want)
			}
		})
	}
	if len(Header) != len(EventRow(core.Event{})) {
		t.Errorf("row width must match header")
	}
}
