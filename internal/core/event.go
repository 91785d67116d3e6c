package core

import "time"

type EventType string

const (
	EventEntryCreated  EventType = "entry.created"
	EventEntryUpdated  EventType = "entry.updated"
	EventEntryDeleted  EventType = "entry.deleted"
	EventEntriesReset  EventType = "entries.reset"
	EventGoalsUpdated  EventType = "goals.updated"
	EventWeekArcReset  EventType = "week.reset"
	EventMonthArcReset EventType = "month.reset"
)

// Event describes a persisted change, published after the store write.
type Event struct {
	Type         EventType `json:"type"`
	Entry        *Entry    `json:"entry,omitempty"`
	WeekResetTs  int64     `json:"weekResetTs,omitempty"`
	MonthResetTs int64     `json:"monthResetTs,omitempty"`
	Goals        *Goals    `json:"goals,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Valid reports whether the event type is known.
func (t EventType) Valid() bool {
	switch t {
	case EventEntryCreated, EventEntryUpdated, EventEntryDeleted, EventEntriesReset,
		EventGoalsUpdated, EventWeekArcReset, EventMonthArcReset:
		return true
	}
	return false
}
