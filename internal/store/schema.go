package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"painel/internal/core"
)

// ErrCorrupt is returned when the persisted bytes are not a JSON object.
var ErrCorrupt = errors.New("corrupt document")

// schemaStep upgrades a document to the step's version. Steps run in order
// on every load and must be idempotent; raw runs on the top-level JSON fields
// before decoding, typed on the decoded document.
type schemaStep struct {
	version int
	raw     func(fields map[string]json.RawMessage, d Defaults) error
	typed   func(doc *core.Document)
}

var schemaSteps = []schemaStep{
	{version: 1, raw: backfillShape},
	{version: 2, typed: backfillClientAlias},
}

// CurrentSchemaVersion is stamped on every document this build writes.
var CurrentSchemaVersion = schemaSteps[len(schemaSteps)-1].version

func upgrade(data []byte, d Defaults) (*core.Document, error) {
	fields := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	for _, step := range schemaSteps {
		if step.raw == nil {
			continue
		}
		if err := step.raw(fields, d); err != nil {
			return nil, fmt.Errorf("schema v%d: %w", step.version, err)
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("re-encode document: %w", err)
	}
	var doc core.Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, step := range schemaSteps {
		if step.typed != nil {
			step.typed(&doc)
		}
	}
	doc.SchemaVersion = CurrentSchemaVersion
	return &doc, nil
}

// backfillShape guarantees both collections are arrays and that goals and
// reset checkpoints exist. A field that is present keeps its value, even 0.
func backfillShape(fields map[string]json.RawMessage, d Defaults) error {
	for _, key := range []string{"entries", "history"} {
		if !isArray(fields[key]) {
			fields[key] = json.RawMessage("[]")
		}
	}

	defaults := map[string]any{
		"weeklyGoalBRL":  d.WeeklyGoal,
		"monthlyGoalBRL": d.MonthlyGoal,
		"weekResetTs":    0,
		"monthResetTs":   0,
	}
	for key, value := range defaults {
		if raw, ok := fields[key]; ok && !isNull(raw) {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[key] = encoded
	}
	return nil
}

// backfillClientAlias fills client from the legacy note field and keeps the
// alias equal to client afterwards.
func backfillClientAlias(doc *core.Document) {
	for _, list := range [][]core.Entry{doc.Entries, doc.History} {
		for i := range list {
			if list[i].Client == "" && list[i].Note != "" {
				list[i].Client = list[i].Note
			}
			list[i].Note = list[i].Client
		}
	}
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
