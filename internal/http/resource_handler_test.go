package http

import (
	"net/http"
	"testing"
)

func TestResourceHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create list and delete", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/resources/tool", map[string]any{
			"title":      "Delve",
			"url":        "https://github.com/go-delve/delve",
			"category":   "debugging",
			"tags_input": "Go, debugger, go",
		}, asAdmin())
		expectStatus(t, rec, http.StatusCreated)
		created := decodeBody[resourceDTO](t, rec)
		if created.Kind != "tool" || created.KindLabel != "Herramientas" {
			t.Fatalf("unexpected kind: %+v", created)
		}
		if len(created.Tags) != 2 || created.Tags[0] != "go" || created.Tags[1] != "debugger" {
			t.Fatalf("unexpected tags: %v", created.Tags)
		}

		rec = env.do(t, http.MethodPost, "/api/resources/tool", map[string]any{"title": "Make"}, asAdmin())
		expectStatus(t, rec, http.StatusCreated)

		rec = env.do(t, http.MethodGet, "/api/resources/tool?tag=debugger", nil)
		expectStatus(t, rec, http.StatusOK)
		list := decodeBody[listResourcesResponse](t, rec)
		if len(list.Resources) != 1 || list.Resources[0].ID != created.ID {
			t.Fatalf("unexpected tag filter result: %+v", list.Resources)
		}

		rec = env.do(t, http.MethodGet, "/api/resources/tool", nil)
		if list := decodeBody[listResourcesResponse](t, rec); len(list.Resources) != 2 {
			t.Fatalf("expected two tools, got %d", len(list.Resources))
		}

		rec = env.do(t, http.MethodPut, "/api/resources/tool/"+created.ID, map[string]any{"title": "Delve debugger", "tags": []string{"go"}}, asAdmin())
		expectStatus(t, rec, http.StatusOK)
		if updated := decodeBody[resourceDTO](t, rec); updated.Title != "Delve debugger" || len(updated.Tags) != 1 {
			t.Fatalf("unexpected update: %+v", updated)
		}

		rec = env.do(t, http.MethodDelete, "/api/resources/tool/"+created.ID, nil, asAdmin())
		expectStatus(t, rec, http.StatusNoContent)
		rec = env.do(t, http.MethodDelete, "/api/resources/tool/"+created.ID, nil, asAdmin())
		expectStatus(t, rec, http.StatusNotFound)
	})

	t.Run("kind rules and permissions", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/resources/tool", map[string]any{"title": "Delve"})
		expectStatus(t, rec, http.StatusForbidden)

		rec = env.do(t, http.MethodPost, "/api/resources/certification", map[string]any{"title": "CKA"}, asAdmin())
		expectStatus(t, rec, http.StatusUnprocessableEntity)
		resp := decodeBody[errorResponse](t, rec)
		if _, ok := resp.Errors["attributes.issuer"]; !ok {
			t.Fatalf("expected issuer error, got %v", resp.Errors)
		}

		rec = env.do(t, http.MethodGet, "/api/resources/podcasts", nil)
		expectStatus(t, rec, http.StatusNotFound)

		rec = env.do(t, http.MethodGet, "/api/resources/tool/abc", nil)
		expectStatus(t, rec, http.StatusMethodNotAllowed)
		if got := rec.Header().Get("Allow"); got == "" {
			t.Fatalf("expected Allow header")
		}
	})
}
