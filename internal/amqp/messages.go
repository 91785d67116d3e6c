package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"painel/internal/core"
)

// EventMessage is the wire form of a core.Event. Goals are flattened so
// consumers do not need to know the document layout.
type EventMessage struct {
	Type         core.EventType `json:"type"`
	Entry        *core.Entry    `json:"entry,omitempty"`
	WeekResetTs  int64          `json:"weekResetTs,omitempty"`
	MonthResetTs int64          `json:"monthResetTs,omitempty"`
	WeeklyGoal   *float64       `json:"weeklyGoal,omitempty"`
	MonthlyGoal  *float64       `json:"monthlyGoal,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// NewEventMessage converts ev, stamping it with the current time when the
// event carries none.
func NewEventMessage(ev core.Event) *EventMessage {
	msg := &EventMessage{
		Type:         ev.Type,
		Entry:        ev.Entry,
		WeekResetTs:  ev.WeekResetTs,
		MonthResetTs: ev.MonthResetTs,
		Timestamp:    ev.Timestamp,
	}
	if ev.Goals != nil {
		weekly, monthly := ev.Goals.Weekly, ev.Goals.Monthly
		msg.WeeklyGoal, msg.MonthlyGoal = &weekly, &monthly
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return msg
}

// Event converts the message back to a core.Event.
func (m *EventMessage) Event() core.Event {
	ev := core.Event{
		Type:         m.Type,
		Entry:        m.Entry,
		WeekResetTs:  m.WeekResetTs,
		MonthResetTs: m.MonthResetTs,
		Timestamp:    m.Timestamp,
	}
	if m.WeeklyGoal != nil || m.MonthlyGoal != nil {
		ev.Goals = &core.Goals{}
		if m.WeeklyGoal != nil {
			ev.Goals.Weekly = *m.WeeklyGoal
		}
		if m.MonthlyGoal != nil {
			ev.Goals.Monthly = *m.MonthlyGoal
		}
	}
	return ev
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes a message and rejects unknown event types.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
