package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"painel/internal/clock"
	"painel/internal/core"
	applog "painel/internal/log"
)

// EntryService records, edits and removes sales, keeping the current list
// and the history in lockstep by id.
type EntryService struct {
	store  DocumentStore
	clock  *clock.Clock
	events EventPublisher
	logger *applog.Logger
	newID  func() string
}

func NewEntryService(store DocumentStore, clk *clock.Clock, events EventPublisher, logger *applog.Logger) *EntryService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &EntryService{
		store:  store,
		clock:  clk,
		events: events,
		logger: logger.WithComponent(applog.ComponentEntries),
		newID:  uuid.NewString,
	}
}

// AddResult is the created entry and the new total of the current list.
type AddResult struct {
	Entry        core.Entry
	TotalEntries float64
}

// DayState is the admin listing for one day.
type DayState struct {
	Entries []core.Entry
	Goals   core.Goals
}

// Add records a sale in both the current list and the history.
func (s *EntryService) Add(ctx context.Context, amount float64, seller, client string) (AddResult, error) {
	rounded, err := core.ValidateAmount(amount)
	if err != nil {
		return AddResult{}, err
	}

	now := s.clock.Now()
	client = core.CleanText(client, core.MaxClientLen)
	entry := core.Entry{
		Amount: rounded,
		Seller: core.CleanText(seller, core.MaxSellerLen),
		Client: client,
		Note:   client,
		TS:     clock.Millis(now),
		Date:   s.clock.DateLabel(now),
		Day:    s.clock.DayName(now),
	}

	doc, err := s.store.Mutate(ctx, func(doc *core.Document) error {
		entry.ID = s.freshID(doc)
		doc.Entries = append(doc.Entries, entry)
		doc.History = append(doc.History, entry)
		return nil
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("add entry: %w", err)
	}

	s.logger.InfoContext(ctx, "Entry created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithEntry(entry.ID, entry.Amount, entry.Seller).
		ToSlice()...)
	publish(ctx, s.events, s.logger, now, core.Event{Type: core.EventEntryCreated, Entry: &entry})

	return AddResult{Entry: entry, TotalEntries: core.SumAmounts(doc.Entries)}, nil
}

// freshID returns an id absent from both collections.
func (s *EntryService) freshID(doc *core.Document) string {
	for {
		id := s.newID()
		if core.IndexOf(doc.Entries, id) == -1 && core.IndexOf(doc.History, id) == -1 {
			return id
		}
	}
}

// Update changes amount, seller and client wherever id is found. The
// creation timestamp and its labels are left alone.
func (s *EntryService) Update(ctx context.Context, id string, amount float64, seller, client string) (core.Entry, error) {
	rounded, err := core.ValidateAmount(amount)
	if err != nil {
		return core.Entry{}, err
	}
	seller = core.CleanText(seller, core.MaxSellerLen)
	client = core.CleanText(client, core.MaxClientLen)

	var updated core.Entry
	_, err = s.store.Mutate(ctx, func(doc *core.Document) error {
		iCur := core.IndexOf(doc.Entries, id)
		iHis := core.IndexOf(doc.History, id)
		if iCur == -1 && iHis == -1 {
			return core.ErrNotFound
		}
		if iCur != -1 {
			doc.Entries[iCur].SetDetails(rounded, seller, client)
			updated = doc.Entries[iCur]
		}
		if iHis != -1 {
			doc.History[iHis].SetDetails(rounded, seller, client)
			updated = doc.History[iHis]
		}
		return nil
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Entry updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithEntry(id, rounded, seller).
		ToSlice()...)
	publish(ctx, s.events, s.logger, s.clock.Now(), core.Event{Type: core.EventEntryUpdated, Entry: &updated})

	return updated, nil
}

// Delete removes id from both collections.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	var removed core.Entry
	_, err := s.store.Mutate(ctx, func(doc *core.Document) error {
		if i := core.IndexOf(doc.History, id); i != -1 {
			removed = doc.History[i]
		} else if i := core.IndexOf(doc.Entries, id); i != -1 {
			removed = doc.Entries[i]
		}

		entries, fromCur := core.Without(doc.Entries, id)
		history, fromHis := core.Without(doc.History, id)
		if !fromCur && !fromHis {
			return core.ErrNotFound
		}
		doc.Entries, doc.History = entries, history
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Entry deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldEntryID, id)
	publish(ctx, s.events, s.logger, s.clock.Now(), core.Event{Type: core.EventEntryDeleted, Entry: &removed})

	return nil
}

// ResetCurrent empties the current list. History and the arc checkpoints
// are not touched.
func (s *EntryService) ResetCurrent(ctx context.Context, confirm bool) error {
	if !confirm {
		return core.ErrConfirmationMissing
	}

	var cleared int
	if _, err := s.store.Mutate(ctx, func(doc *core.Document) error {
		cleared = len(doc.Entries)
		doc.Entries = []core.Entry{}
		return nil
	}); err != nil {
		return fmt.Errorf("reset entries: %w", err)
	}

	s.logger.InfoContext(ctx, "Current entries cleared",
		applog.FieldOperation, applog.OpReset,
		"cleared", cleared)
	publish(ctx, s.events, s.logger, s.clock.Now(), core.Event{Type: core.EventEntriesReset})

	return nil
}

// DayState lists the history entries labelled with date, or the current
// list when date is empty, most recent first.
func (s *EntryService) DayState(ctx context.Context, date string) (DayState, error) {
	if date != "" {
		if _, err := s.clock.ParseDate(date); err != nil {
			return DayState{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, err)
		}
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return DayState{}, fmt.Errorf("load document: %w", err)
	}

	entries := make([]core.Entry, 0, len(doc.Entries))
	if date == "" {
		entries = append(entries, doc.Entries...)
	} else {
		for _, e := range doc.History {
			if e.Date == date {
				entries = append(entries, e)
			}
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].TS > entries[j].TS })

	return DayState{Entries: entries, Goals: doc.Goals()}, nil
}
