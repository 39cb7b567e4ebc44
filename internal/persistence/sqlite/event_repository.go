package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/knowledge-dashboard/internal/persistence"
)

type eventRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	StartAt     string         `db:"start_at"`
	EndAt       sql.NullString `db:"end_at"`
	Category    string         `db:"category"`
	AllDay      bool           `db:"all_day"`
	Recurrence  string         `db:"recurrence"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

const eventColumns = `id, user_id, title, description, start_at, end_at, category, all_day, recurrence, created_at, updated_at`

// CreateEvent inserts a new event.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.UserID,
		event.Title,
		event.Description,
		formatTime(event.Start),
		nullableTime(event),
		event.Category,
		boolToInt(event.AllDay),
		event.Recurrence,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent replaces the mutable fields of an existing event.
func (s *Storage) UpdateEvent(ctx context.Context, event persistence.Event) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, start_at = ?, end_at = ?, category = ?, all_day = ?, recurrence = ?, updated_at = ?
		WHERE id = ?`,
		event.Title,
		event.Description,
		formatTime(event.Start),
		nullableTime(event),
		event.Category,
		boolToInt(event.AllDay),
		event.Recurrence,
		formatTime(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	var row eventRow
	err := s.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Event{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: get event: %w", err)
	}
	return row.toEvent()
}

// ListEvents returns matching events ordered by start ascending.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}

	var window []string
	if filter.StartsFrom != nil {
		window = append(window, "start_at >= ?")
		args = append(args, formatTime(*filter.StartsFrom))
	}
	if filter.StartsBefore != nil {
		window = append(window, "start_at < ?")
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if len(window) > 0 {
		clause := "(" + strings.Join(window, " AND ") + ")"
		if filter.IncludeRecurring {
			clause = "(" + clause + " OR recurrence != '')"
		}
		conds = append(conds, clause)
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_at ASC, id ASC`

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list events: %w", err)
	}

	events := make([]persistence.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// DeleteEvent removes an event by ID.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r eventRow) toEvent() (persistence.Event, error) {
	event := persistence.Event{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		AllDay:      r.AllDay,
		Recurrence:  r.Recurrence,
	}

	var err error
	if event.Start, err = parseTime(r.StartAt); err != nil {
		return persistence.Event{}, err
	}
	if r.EndAt.Valid {
		end, err := parseTime(r.EndAt.String)
		if err != nil {
			return persistence.Event{}, err
		}
		event.End = &end
	}
	if event.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func nullableTime(event persistence.Event) any {
	if event.End == nil {
		return nil
	}
	return formatTime(*event.End)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
