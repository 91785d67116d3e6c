// Package store persists the dashboard document.
//
// The whole document lives in one JSON resource. Load always returns a
// complete, defaulted document and Mutate is the only write path: it loads,
// applies one transformation and rewrites the resource in full.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"painel/internal/core"
	applog "painel/internal/log"
)

const sampleSize = 200

// Medium is where the encoded document is kept. Read must return an error
// matching fs.ErrNotExist when nothing has been written yet.
type Medium interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Location() string
	Close() error
}

// Defaults are applied to documents that lack the corresponding fields.
type Defaults struct {
	WeeklyGoal  float64
	MonthlyGoal float64
}

// Info is a diagnostic view of the persisted resource.
type Info struct {
	Location string
	Size     int
	Sample   string
}

type Store struct {
	mu       sync.Mutex
	medium   Medium
	defaults Defaults
	logger   *applog.Logger
}

func New(medium Medium, defaults Defaults, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Store{
		medium:   medium,
		defaults: defaults,
		logger:   logger.WithComponent(applog.ComponentStorage),
	}
}

// Load returns the current document, creating the resource if missing.
func (s *Store) Load(ctx context.Context) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Mutate applies fn to a freshly loaded document and persists the result.
// When fn fails nothing is written and its error is returned as is.
func (s *Store) Mutate(ctx context.Context, fn func(*core.Document) error) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.write(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Describe reports where the document lives and how large it is.
func (s *Store) Describe(ctx context.Context) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.medium.Read(ctx)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("read document: %w", err)
	}
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	return Info{Location: s.medium.Location(), Size: len(data), Sample: string(sample)}, nil
}

func (s *Store) Close() error {
	return s.medium.Close()
}

func (s *Store) load(ctx context.Context) (*core.Document, error) {
	data, err := s.medium.Read(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		doc, err := upgrade(nil, s.defaults)
		if err != nil {
			return nil, err
		}
		if err := s.write(ctx, doc); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "Created document", applog.FieldMedium, s.medium.Location())
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return upgrade(data, s.defaults)
}

func (s *Store) write(ctx context.Context, doc *core.Document) error {
	if doc.Entries == nil {
		doc.Entries = []core.Entry{}
	}
	if doc.History == nil {
		doc.History = []core.Entry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.medium.Write(ctx, data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	s.logger.DebugContext(ctx, "Document written",
		applog.FieldMedium, s.medium.Location(),
		"bytes", len(data),
		"entries", len(doc.Entries),
		"history", len(doc.History))
	return nil
}
