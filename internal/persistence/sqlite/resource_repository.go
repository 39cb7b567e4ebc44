package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/knowledge-dashboard/internal/persistence"
)

type resourceRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	UserID      string `db:"user_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	URL         string `db:"url"`
	Category    string `db:"category"`
	Tags        string `db:"tags"`
	Attributes  string `db:"attributes"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

const resourceColumns = `id, kind, user_id, title, description, url, category, tags, attributes, created_at, updated_at`

// CreateResource inserts a new resource.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" || resource.Kind == "" {
		return persistence.ErrConstraintViolation
	}
	row, err := newResourceRow(resource)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO resources (`+resourceColumns+`)
		VALUES (:id, :kind, :user_id, :title, :description, :url, :category, :tags, :attributes, :created_at, :updated_at)`, row)
	return mapError(err)
}

// UpdateResource replaces the mutable fields of an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	row, err := newResourceRow(resource)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, `
			UPDATE resources
			SET title = :title, description = :description, url = :url, category = :category,
				tags = :tags, attributes = :attributes, updated_at = :updated_at
			WHERE id = :id AND kind = :kind`, row)
		if err != nil {
			return mapError(err)
		}
		return requireAffected(result)
	})
}

// GetResource retrieves a resource by kind and ID.
func (s *Storage) GetResource(ctx context.Context, kind, id string) (persistence.Resource, error) {
	var row resourceRow
	err := s.db.GetContext(ctx, &row, `SELECT `+resourceColumns+` FROM resources WHERE kind = ? AND id = ?`, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Resource{}, fmt.Errorf("sqlite: get resource: %w", err)
	}
	return row.toResource()
}

// ListResources returns every resource of kind ordered by creation time.
func (s *Storage) ListResources(ctx context.Context, kind string) ([]persistence.Resource, error) {
	var rows []resourceRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+resourceColumns+` FROM resources WHERE kind = ? ORDER BY created_at ASC, id ASC`, kind)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list resources: %w", err)
	}

	resources := make([]persistence.Resource, 0, len(rows))
	for _, row := range rows {
		resource, err := row.toResource()
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

// DeleteResource removes a resource by kind and ID.
func (s *Storage) DeleteResource(ctx context.Context, kind, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func newResourceRow(resource persistence.Resource) (resourceRow, error) {
	tags := resource.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return resourceRow{}, fmt.Errorf("sqlite: encode tags: %w", err)
	}
	attributes := resource.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	attributesJSON, err := json.Marshal(attributes)
	if err != nil {
		return resourceRow{}, fmt.Errorf("sqlite: encode attributes: %w", err)
	}

	return resourceRow{
		ID:          resource.ID,
		Kind:        resource.Kind,
		UserID:      resource.UserID,
		Title:       resource.Title,
		Description: resource.Description,
		URL:         resource.URL,
		Category:    resource.Category,
		Tags:        string(tagsJSON),
		Attributes:  string(attributesJSON),
		CreatedAt:   formatTime(resource.CreatedAt),
		UpdatedAt:   formatTime(resource.UpdatedAt),
	}, nil
}

func (r resourceRow) toResource() (persistence.Resource, error) {
	resource := persistence.Resource{
		ID:          r.ID,
		Kind:        r.Kind,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
	}
	if err := json.Unmarshal([]byte(r.Tags), &resource.Tags); err != nil {
		return persistence.Resource{}, fmt.Errorf("sqlite: decode tags of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Attributes), &resource.Attributes); err != nil {
		return persistence.Resource{}, fmt.Errorf("sqlite: decode attributes of %s: %w", r.ID, err)
	}

	var err error
	if resource.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return persistence.Resource{}, err
	}
	if resource.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}
