package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs pending migrations in version order.
type Manager struct {
	scanner  *Scanner
	executor *Executor
	logger   *slog.Logger
}

// NewManager wires a scanner and executor together.
func NewManager(scanner *Scanner, executor *Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger.With("component", "migration")}
}

// Run applies every pending migration. It stops at the first failure; earlier
// migrations stay applied.
func (m *Manager) Run(ctx context.Context) error {
	started := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "schema version",
		"current_version", status.CurrentVersion,
		"pending_count", len(status.Pending),
	)

	for i, pending := range status.Pending {
		m.logger.InfoContext(ctx, "applying migration",
			"version", pending.Version,
			"description", pending.Description,
			"position", i+1,
			"total", len(status.Pending),
		)
		if err := m.executor.Apply(ctx, pending); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", pending.Version, "error", err)
			return &MigrationError{Version: pending.Version, FilePath: pending.FilePath, Operation: "execute migration",
				Err: fmt.Errorf("%w: %w", ErrMigrationFailed, err)}
		}
	}

	if len(status.Pending) > 0 {
		m.logger.InfoContext(ctx, "migrations applied",
			"count", len(status.Pending),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
	return nil
}

// Status compares the migration files against schema_migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.Init(ctx); err != nil {
		return Status{}, err
	}

	available, err := m.scanner.Scan()
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}

	byVersion := make(map[string]Migration, len(available))
	for _, mig := range available {
		byVersion[mig.Version] = mig
	}

	status := Status{Applied: applied}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		mig, ok := byVersion[a.Version]
		if !ok {
			return Status{}, &MigrationError{Version: a.Version, Operation: "validate sequence", Err: ErrUnknownVersion}
		}
		if a.Checksum != "" && a.Checksum != mig.Checksum {
			return Status{}, &MigrationError{Version: a.Version, FilePath: mig.FilePath, Operation: "verify checksum", Err: ErrChecksumMismatch}
		}
		done[a.Version] = true
		status.CurrentVersion = a.Version
	}
	for _, mig := range available {
		if !done[mig.Version] {
			status.Pending = append(status.Pending, mig)
		}
	}
	return status, nil
}
