package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"painel/internal/core"
)

const maxBodyBytes = 64 << 10

// looseString accepts a JSON string, number or boolean and keeps its text.
// null decodes to the empty string.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return errors.New("expected scalar")
	}
	*s = looseString(data)
	return nil
}

type entryRequest struct {
	Amount json.RawMessage `json:"amount"`
	Seller looseString     `json:"seller"`
	Client looseString     `json:"client"`
	Note   looseString     `json:"note"`
}

// client prefers the client field, falling back to the legacy note.
func (e entryRequest) client() string {
	if c := sanitizeInput(string(e.Client)); c != "" {
		return c
	}
	return sanitizeInput(string(e.Note))
}

type goalsRequest struct {
	WeeklyGoalBRL  json.RawMessage `json:"weeklyGoalBRL"`
	MonthlyGoalBRL json.RawMessage `json:"monthlyGoalBRL"`
}

type resetRequest struct {
	Confirm json.RawMessage `json:"confirm"`
}

// decodeBody reads a JSON object into dst. An empty body leaves dst as is.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// parseAmount accepts a JSON number or a decimal string ("12,50" included).
func parseAmount(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, core.ErrInvalidAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, core.ErrInvalidAmount
		}
		return core.ParseAmount(s)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, core.ErrInvalidAmount
	}
	return core.ValidateAmount(v)
}

// parseOptionalNumber returns nil when raw is absent, null or not numeric.
func parseOptionalNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &v
}

// truthy follows loose boolean rules: absent, null, false, 0 and "" are
// false, everything else is true.
func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
