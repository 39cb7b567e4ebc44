package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/knowledge-dashboard/internal/logging"
	"github.com/example/knowledge-dashboard/internal/persistence"
)

// ResourceRepository captures the persistence operations needed by the service.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) (Resource, error)
	GetResource(ctx context.Context, kind Kind, id string) (Resource, error)
	UpdateResource(ctx context.Context, resource Resource) (Resource, error)
	DeleteResource(ctx context.Context, kind Kind, id string) error
	ListResources(ctx context.Context, kind Kind) ([]Resource, error)
}

// ResourceService serves every dashboard collection through one list, create,
// update, delete contract. Kind specific rules live in validateAttributes.
type ResourceService struct {
	resources   ResourceRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(resources ResourceRepository, idGenerator func() string, now func() time.Time) *ResourceService {
	return NewResourceServiceWithLogger(resources, idGenerator, now, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a specified logger.
func NewResourceServiceWithLogger(resources ResourceRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{resources: resources, idGenerator: idGenerator, now: now, logger: logging.OrDefault(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and persists a new resource of params.Kind.
func (s *ResourceService) CreateResource(ctx context.Context, params CreateResourceParams) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource",
		"principal_id", params.Principal.UserID,
		"kind", params.Kind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if params.Kind.Label() == "" {
		err = fmt.Errorf("%w: %q", ErrUnknownKind, params.Kind)
		return
	}

	input := normalizeResourceInput(params.Kind, params.Input)
	if vErr := validateResourceInput(params.Kind, input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	resource = Resource{
		ID:          s.idGenerator(),
		Kind:        params.Kind,
		UserID:      params.Principal.UserID,
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		Category:    input.Category,
		Tags:        input.Tags,
		Attributes:  input.Attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.resources == nil {
		return
	}

	var persisted Resource
	persisted, err = s.resources.CreateResource(ctx, resource)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}
	resource = persisted
	return
}

// UpdateResource validates input and replaces an existing resource.
func (s *ResourceService) UpdateResource(ctx context.Context, params UpdateResourceParams) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource",
		"principal_id", params.Principal.UserID,
		"kind", params.Kind,
		"resource_id", params.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource updated")
	}()

	var existing Resource
	existing, err = s.resources.GetResource(ctx, params.Kind, params.ResourceID)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}

	input := normalizeResourceInput(params.Kind, params.Input)
	if vErr := validateResourceInput(params.Kind, input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Title = input.Title
	updated.Description = input.Description
	updated.URL = input.URL
	updated.Category = input.Category
	updated.Tags = input.Tags
	updated.Attributes = input.Attributes
	updated.UpdatedAt = s.now()

	resource, err = s.resources.UpdateResource(ctx, updated)
	if err != nil {
		err = mapResourceRepoError(err)
	}
	return
}

// DeleteResource removes a resource when requested by the administrator.
func (s *ResourceService) DeleteResource(ctx context.Context, principal Principal, kind Kind, resourceID string) error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.resources == nil {
		return fmt.Errorf("resource repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteResource",
		"principal_id", principal.UserID,
		"kind", kind,
		"resource_id", resourceID,
	)

	if err := s.resources.DeleteResource(ctx, kind, resourceID); err != nil {
		err = mapResourceRepoError(err)
		logger.ErrorContext(ctx, "failed to delete resource", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "resource deleted")
	return nil
}

// ListResources returns the resources of a kind, newest first, narrowed by
// the optional search text, category and tag.
func (s *ResourceService) ListResources(ctx context.Context, params ListResourcesParams) (resources []Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if params.Kind.Label() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, params.Kind)
	}
	if s.resources == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListResources",
		"principal_id", params.Principal.UserID,
		"kind", params.Kind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list resources", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(resources)).DebugContext(ctx, "resources listed")
	}()

	var raw []Resource
	raw, err = s.resources.ListResources(ctx, params.Kind)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}

	search := strings.ToLower(strings.TrimSpace(params.Search))
	category := strings.TrimSpace(params.Category)
	tag := strings.ToLower(strings.TrimSpace(params.Tag))

	resources = make([]Resource, 0, len(raw))
	for _, r := range raw {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		if tag != "" && !slices.Contains(r.Tags, tag) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		resources = append(resources, r)
	}

	slices.SortStableFunc(resources, func(a, b Resource) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return
}

func matchesSearch(r Resource, needle string) bool {
	if strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(tag, needle) {
			return true
		}
	}
	return false
}

func normalizeResourceInput(kind Kind, input ResourceInput) ResourceInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.URL = strings.TrimSpace(input.URL)
	input.Category = strings.TrimSpace(input.Category)
	input.Tags = mergeTags(input.Tags, input.TagsInput)
	input.TagsInput = ""
	input.Attributes = normalizeAttributes(kind, input.Attributes)
	return input
}

func validateResourceInput(kind Kind, input ResourceInput) *ValidationError {
	vErr := validateStruct(input)
	validateAttributes(kind, input.Attributes, vErr)
	return vErr
}

func mapResourceRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("resource", "resource violates a storage constraint")
		return vErr
	}
	return err
}
