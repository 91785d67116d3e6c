package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"painel/internal/core"
)

func TestAddStoresIdenticalCopies(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()

	res, err := svc.Add(context.Background(), 150.456, "Ana", "Loja X")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res.Entry.Amount != 150.46 || res.TotalEntries != 150.46 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entry.ID == "" || res.Entry.Note != "Loja X" {
		t.Fatalf("entry missing id or note alias: %+v", res.Entry)
	}
	if res.Entry.Date != "2025-01-15" || res.Entry.Day != "quarta-feira" {
		t.Fatalf("unexpected labels: %+v", res.Entry)
	}

	doc := env.load(t)
	if len(doc.Entries) != 1 || len(doc.History) != 1 {
		t.Fatalf("expected one entry in each collection: %+v", doc)
	}
	if !reflect.DeepEqual(doc.Entries[0], doc.History[0]) || !reflect.DeepEqual(doc.Entries[0], res.Entry) {
		t.Fatalf("collections out of step:\n%+v\n%+v", doc.Entries[0], doc.History[0])
	}

	res2, err := svc.Add(context.Background(), -50, "Bia", "Loja Y")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if res2.TotalEntries != 100.46 {
		t.Fatalf("TotalEntries = %v, want 100.46", res2.TotalEntries)
	}
	if res2.Entry.ID == res.Entry.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestAddLabelsUseLocalDay(t *testing.T) {
	env := newTestEnv(t)
	e := env.addAt(t, "2025-03-01T02:59:00Z", 10, "Loja")
	if e.Date != "2025-02-28" || e.Day != "sexta-feira" {
		t.Fatalf("labels should follow the UTC-3 calendar: %+v", e)
	}
}

func TestAddRejectsInvalidAmounts(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()

	for _, amount := range []float64{0, 0.001, math.NaN(), math.Inf(1)} {
		if _, err := svc.Add(context.Background(), amount, "Ana", "Loja"); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("Add(%v) expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if doc := env.load(t); len(doc.Entries) != 0 || len(doc.History) != 0 {
		t.Fatalf("rejected adds must not write: %+v", doc)
	}
	if len(env.events.Types()) != 0 {
		t.Fatalf("rejected adds must not publish")
	}
}

func TestAddCapsTextFields(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.entries().Add(context.Background(), 1, strings.Repeat("s", 100), strings.Repeat("c", 200))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entry.Seller) != core.MaxSellerLen || len(res.Entry.Client) != core.MaxClientLen {
		t.Fatalf("text not capped: seller=%d client=%d", len(res.Entry.Seller), len(res.Entry.Client))
	}
}

func TestUpdateInBothCollections(t *testing.T) {
	env := newTestEnv(t)
	e := env.addAt(t, "2025-01-14T12:00:00Z", 100, "Loja X")
	env.time.Set(t, "2025-01-15T15:00:00Z")

	updated, err := env.entries().Update(context.Background(), e.ID, 99.999, "Bia", "Loja Z")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Amount != 100 || updated.Client != "Loja Z" || updated.Note != "Loja Z" || updated.Seller != "Bia" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	doc := env.load(t)
	if !reflect.DeepEqual(doc.Entries[0], doc.History[0]) {
		t.Fatalf("collections out of step after update")
	}
	if doc.History[0].TS != e.TS || doc.History[0].Date != e.Date || doc.History[0].Day != e.Day {
		t.Fatalf("update must keep ts and labels: %+v vs %+v", doc.History[0], e)
	}
}

func TestUpdateOnlyInHistory(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	old := env.addAt(t, "2025-01-14T12:00:00Z", 100, "Loja X")
	if err := svc.ResetCurrent(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	current := env.addAt(t, "2025-01-15T12:00:00Z", 5, "Loja Y")

	if _, err := svc.Update(context.Background(), old.ID, 200, "Ana", "Loja X2"); err != nil {
		t.Fatalf("Update history-only entry: %v", err)
	}

	doc := env.load(t)
	if len(doc.Entries) != 1 || !reflect.DeepEqual(doc.Entries[0], current) {
		t.Fatalf("current list must be untouched: %+v", doc.Entries)
	}
	if i := core.IndexOf(doc.History, old.ID); i == -1 || doc.History[i].Amount != 200 || doc.History[i].Client != "Loja X2" {
		t.Fatalf("history entry not updated: %+v", doc.History)
	}
}

func TestUpdateErrors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()

	if _, err := svc.Update(context.Background(), "missing", 10, "", ""); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", 0, "", ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("validation should come first, got %v", err)
	}
}

func TestDeleteRemovesFromBoth(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	keep := env.addAt(t, "2025-01-14T12:00:00Z", 1, "A")
	drop := env.addAt(t, "2025-01-14T13:00:00Z", 2, "B")

	if err := svc.Delete(context.Background(), drop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	doc := env.load(t)
	if len(doc.Entries) != 1 || len(doc.History) != 1 || doc.Entries[0].ID != keep.ID || doc.History[0].ID != keep.ID {
		t.Fatalf("unexpected collections after delete: %+v", doc)
	}

	if err := svc.Delete(context.Background(), drop.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete expected ErrNotFound, got %v", err)
	}
}

func TestDeleteHistoryOnlyEntry(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	e := env.addAt(t, "2025-01-14T12:00:00Z", 1, "A")
	if err := svc.ResetCurrent(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if doc := env.load(t); len(doc.History) != 0 {
		t.Fatalf("history entry should be gone: %+v", doc.History)
	}
}

func TestResetCurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	env.addAt(t, "2025-01-14T12:00:00Z", 1, "A")
	env.addAt(t, "2025-01-14T13:00:00Z", 2, "B")
	if _, err := env.aggregator().ResetWeekArc(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := env.load(t)

	err := svc.ResetCurrent(context.Background(), false)
	if !errors.Is(err, core.ErrConfirmationMissing) || !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if doc := env.load(t); len(doc.Entries) != 2 {
		t.Fatalf("unconfirmed reset must not write")
	}

	if err := svc.ResetCurrent(context.Background(), true); err != nil {
		t.Fatalf("ResetCurrent: %v", err)
	}
	after := env.load(t)
	if len(after.Entries) != 0 || after.Entries == nil {
		t.Fatalf("entries should be an empty list: %v", after.Entries)
	}
	if !reflect.DeepEqual(before.History, after.History) {
		t.Fatalf("history must never shrink on reset")
	}
	if after.WeekResetTs != before.WeekResetTs || after.MonthResetTs != before.MonthResetTs {
		t.Fatalf("checkpoints must be untouched")
	}
}

func TestDayState(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	a := env.addAt(t, "2025-01-14T12:00:00Z", 1, "A")
	b := env.addAt(t, "2025-01-14T18:00:00Z", 2, "B")
	if err := svc.ResetCurrent(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	c := env.addAt(t, "2025-01-15T12:00:00Z", 3, "C")

	state, err := svc.DayState(context.Background(), "")
	if err != nil {
		t.Fatalf("DayState: %v", err)
	}
	if len(state.Entries) != 1 || state.Entries[0].ID != c.ID || state.Goals.Weekly != 2000000 {
		t.Fatalf("unexpected current state: %+v", state)
	}

	state, err = svc.DayState(context.Background(), "2025-01-14")
	if err != nil {
		t.Fatalf("DayState: %v", err)
	}
	if len(state.Entries) != 2 || state.Entries[0].ID != b.ID || state.Entries[1].ID != a.ID {
		t.Fatalf("expected history of the day, newest first: %+v", state.Entries)
	}

	if _, err := svc.DayState(context.Background(), "14/01/2025"); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestEventsPublishedAfterWrites(t *testing.T) {
	env := newTestEnv(t)
	svc := env.entries()
	e := env.addAt(t, "2025-01-14T12:00:00Z", 1, "A")
	if _, err := svc.Update(context.Background(), e.ID, 2, "Ana", "A"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), e.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetCurrent(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	want := []core.EventType{core.EventEntryCreated, core.EventEntryUpdated, core.EventEntryDeleted, core.EventEntriesReset}
	if got := env.events.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if deleted := env.events.events[2].Entry; deleted == nil || deleted.ID != e.ID {
		t.Fatalf("delete event should carry the removed entry: %+v", deleted)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	env := newTestEnv(t)
	env.events.err = errPublish

	if _, err := env.entries().Add(context.Background(), 10, "Ana", "Loja"); err != nil {
		t.Fatalf("Add should succeed when publishing fails: %v", err)
	}
	if doc := env.load(t); len(doc.History) != 1 {
		t.Fatalf("entry should be persisted")
	}
}

func TestNilPublisher(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEntryService(env.store, env.clock, nil, nil)
	if _, err := svc.Add(context.Background(), 10, "Ana", "Loja"); err != nil {
		t.Fatalf("Add without publisher: %v", err)
	}
}
