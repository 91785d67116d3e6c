package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxSellerLen = 60
	MaxClientLen = 140
)

type (
	// Entry is one recorded sale. Date and Day are labels computed once at
	// creation under the configured offset.
	Entry struct {
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
		Seller string  `json:"seller"`
		Client string  `json:"client"`
		Note   string  `json:"note"` // legacy alias of Client
		TS     int64   `json:"ts"`   // Unix milliseconds
		Date   string  `json:"date"`
		Day    string  `json:"day"`
	}

	// Document is the persisted root. Entries is the current working list,
	// History the durable record used for aggregation.
	Document struct {
		SchemaVersion  int     `json:"schemaVersion"`
		Entries        []Entry `json:"entries"`
		History        []Entry `json:"history"`
		WeeklyGoalBRL  float64 `json:"weeklyGoalBRL"`
		MonthlyGoalBRL float64 `json:"monthlyGoalBRL"`
		WeekResetTs    int64   `json:"weekResetTs"`
		MonthResetTs   int64   `json:"monthResetTs"`
	}

	Goals struct {
		Weekly  float64 `json:"weeklyGoal"`
		Monthly float64 `json:"monthlyGoal"`
	}
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrConfirmationMissing = fmt.Errorf("%w: confirmation missing", ErrInvalidInput)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	ErrNotFound            = errors.New("entry not found")
)

// Goals returns the document's current targets.
func (d *Document) Goals() Goals {
	return Goals{Weekly: d.WeeklyGoalBRL, Monthly: d.MonthlyGoalBRL}
}

// SetDetails overwrites the mutable fields, keeping Note in step with Client.
func (e *Entry) SetDetails(amount float64, seller, client string) {
	e.Amount = amount
	e.Seller = seller
	e.Client = client
	e.Note = client
}

// IndexOf returns the position of id in entries, or -1.
func IndexOf(entries []Entry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Without returns entries minus any element with the given id and whether
// something was removed.
func Without(entries []Entry, id string) ([]Entry, bool) {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out, len(out) != len(entries)
}

// CleanText trims s and caps it at max runes.
func CleanText(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
