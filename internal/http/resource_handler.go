package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/knowledge-dashboard/internal/application"
)

type resourceService interface {
	CreateResource(ctx context.Context, params application.CreateResourceParams) (application.Resource, error)
	UpdateResource(ctx context.Context, params application.UpdateResourceParams) (application.Resource, error)
	DeleteResource(ctx context.Context, principal application.Principal, kind application.Kind, resourceID string) error
	ListResources(ctx context.Context, params application.ListResourcesParams) ([]application.Resource, error)
}

// ResourceHandler serves every dashboard collection under /api/resources/{kind}.
type ResourceHandler struct {
	service   resourceService
	responder responder
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, responder: newResponder(logger)}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	kind, _ := ResourceFromContext(r.Context())
	query := r.URL.Query()
	resources, err := h.service.ListResources(r.Context(), application.ListResourcesParams{
		Principal: PrincipalOrReadOnly(r.Context()),
		Kind:      kind,
		Search:    query.Get("q"),
		Category:  query.Get("category"),
		Tag:       query.Get("tag"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]resourceDTO, 0, len(resources))
	for _, res := range resources {
		out = append(out, toResourceDTO(res))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{
		Kind:      string(kind),
		KindLabel: kind.Label(),
		Resources: out,
	})
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.ResourceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	kind, _ := ResourceFromContext(r.Context())
	resource, err := h.service.CreateResource(r.Context(), application.CreateResourceParams{
		Principal: PrincipalOrReadOnly(r.Context()),
		Kind:      kind,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toResourceDTO(resource))
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	kind, resourceID := ResourceFromContext(r.Context())
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var input application.ResourceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resource, err := h.service.UpdateResource(r.Context(), application.UpdateResourceParams{
		Principal:  PrincipalOrReadOnly(r.Context()),
		Kind:       kind,
		ResourceID: resourceID,
		Input:      input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(resource))
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	kind, resourceID := ResourceFromContext(r.Context())
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	if err := h.service.DeleteResource(r.Context(), PrincipalOrReadOnly(r.Context()), kind, resourceID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type listResourcesResponse struct {
	Kind      string        `json:"kind"`
	KindLabel string        `json:"kind_label"`
	Resources []resourceDTO `json:"resources"`
}
