package globus

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
)

func configAuthForTest() config.AuthConfig {
	return config.AuthConfig{Method: config.AuthMethodAccessToken, AccessToken: "test-token"}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestEnsureProjectCreates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"projects": []any{}})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "research", body["project"]["display_name"])
		assert.Equal(t, "admin@example.org", body["project"]["contact_email"])

		writeJSON(t, w, map[string]any{"project": map[string]any{
			"id":            "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a",
			"display_name":  "research",
			"contact_email": "admin@example.org",
		}})
	})

	c := testClient(t, ServiceAuth, mux)
	project, outcome, err := c.EnsureProject(context.Background(), config.ProjectSpec{
		Name:         "research",
		ContactEmail: "admin@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a", project.ID)
}

func TestEnsureProjectUnchangedWhenMatching(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"projects": []any{map[string]any{
			"id":            "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a",
			"display_name":  "research",
			"contact_email": "admin@example.org",
		}}})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("create should not be called for an existing project")
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := testClient(t, ServiceAuth, mux)
	_, outcome, err := c.EnsureProject(context.Background(), config.ProjectSpec{
		Name:         "research",
		ContactEmail: "admin@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestEnsureProjectUpdateHighAssuranceDowngrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"projects": []any{map[string]any{
			"id":            "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a",
			"display_name":  "research",
			"contact_email": "old@example.org",
		}}})
	})
	mux.HandleFunc("PUT /api/projects/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(t, w, map[string]any{"errors": []any{map[string]any{
			"code":   "FORBIDDEN",
			"detail": "a high assurance session is required",
		}}})
	})

	c := testClient(t, ServiceAuth, mux)
	project, outcome, err := c.EnsureProject(context.Background(), config.ProjectSpec{
		Name:         "research",
		ContactEmail: "new@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, "old@example.org", project.ContactEmail)

	warnings := c.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "high-assurance")
	assert.Empty(t, c.Warnings())
}

func TestEnsureProjectDryRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"projects": []any{}})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("dry run must not create")
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := testClient(t, ServiceAuth, mux)
	c.dryRun = true

	project, outcome, err := c.EnsureProject(context.Background(), config.ProjectSpec{
		Name:         "research",
		ContactEmail: "admin@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Nil(t, project)
}

func TestDeleteProjectAbsentIsUnchanged(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"projects": []any{}})
	})

	c := testClient(t, ServiceAuth, mux)
	outcome, err := c.DeleteProject(context.Background(), "gone")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestWhoami(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{
			"sub":                "9c3e1a5d-1111-2222-3333-444455556666",
			"preferred_username": "rs@example.org",
			"name":               "R. Searcher",
		})
	})

	c := testClient(t, ServiceAuth, mux)
	id, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rs@example.org", id.Username)
}

func TestResolveProjectIDAcceptsUUID(t *testing.T) {
	c := NewRealClient(configAuthForTest())
	id, err := c.ResolveProjectID(context.Background(), "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a")
	require.NoError(t, err)
	assert.Equal(t, "5c5a2e94-8c14-4b97-9c59-0a3e1b4f6f7a", id)
}
