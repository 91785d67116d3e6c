package backend

import (
	"context"
	"fmt"

	applog "painel/internal/log"
	"painel/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentStorage),
	}
}

// CreateBackend opens the configured medium and wraps it in a Store.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		medium store.Medium
		err    error
	)
	switch config.Type {
	case FileBackend:
		medium, err = store.NewFileMedium(config.DataDirectory)
	case SQLiteBackend:
		medium, err = store.NewSQLiteMedium(config.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	st := store.New(medium, config.Defaults, f.logger)

	// Create the document up front so a broken medium fails at startup.
	if _, err := st.Load(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized store backend",
		"backend", config.Type.String(),
		applog.FieldMedium, medium.Location())

	return &BackendResult{
		Store:   st,
		Cleanup: st.Close,
	}, nil
}
