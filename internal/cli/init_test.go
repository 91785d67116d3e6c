package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"painel/internal/config"
	applog "painel/internal/log"
	"painel/internal/store"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"file", config.BackendFile, false},
		{"sqlite", config.BackendSQLite, false},
		{"unknown", "redis", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				StoreBackend: tt.backend,
				DataDir:      filepath.Join(dir, tt.name),
				SQLiteDBPath: filepath.Join(dir, tt.name, "painel.db"),
				WeekGoalBRL:  2000000,
				MonthGoalBRL: 8000000,
			}
			result, err := OpenStore(context.Background(), applog.Discard(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer result.Cleanup()

			doc, err := result.Store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if doc.WeeklyGoalBRL != 2000000 || doc.SchemaVersion != store.CurrentSchemaVersion {
				t.Fatalf("document not defaulted: %+v", doc)
			}
		})
	}
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(applog.Discard())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
