package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/knowledge-dashboard/internal/persistence"
	"github.com/example/knowledge-dashboard/internal/persistence/memory"
	"github.com/example/knowledge-dashboard/internal/persistence/sqlite"
)

// StorageHarness exposes the repositories of one storage backend.
type StorageHarness struct {
	Name      string
	Events    persistence.EventRepository
	Resources persistence.ResourceRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *StorageHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated SQLite database in a temporary directory.
// Close is registered with tb.Cleanup; calling it early is allowed.
func NewSQLiteHarness(tb testing.TB) *StorageHarness {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), "dashboard.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &StorageHarness{
		Name:      "sqlite",
		Events:    storage,
		Resources: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

// NewMemoryHarness returns a harness over the in-memory storage.
func NewMemoryHarness(tb testing.TB) *StorageHarness {
	tb.Helper()

	storage := memory.New()
	return &StorageHarness{Name: "memory", Events: storage, Resources: storage, cleanup: func() { _ = storage.Close() }}
}

// Harnesses returns one harness per storage backend so repository contracts
// can run against each of them.
func Harnesses(tb testing.TB) []*StorageHarness {
	tb.Helper()
	return []*StorageHarness{NewMemoryHarness(tb), NewSQLiteHarness(tb)}
}
