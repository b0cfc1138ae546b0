package globus

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
)

func searchListHandler(t *testing.T, indexes []map[string]any) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /index_list", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"index_list": indexes})
	})
	return mux
}

func TestEnsureSearchIndexTrialLimit(t *testing.T) {
	trials := []map[string]any{
		{"id": "a", "display_name": "one", "is_trial": true},
		{"id": "b", "display_name": "two", "is_trial": true},
		{"id": "c", "display_name": "three", "is_trial": true},
	}

	c := testClient(t, ServiceSearch, searchListHandler(t, trials))
	_, _, err := c.EnsureSearchIndex(context.Background(), config.SearchIndexSpec{Name: "four"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trial indexes already exist")
}

func TestEnsureSearchIndexImmutableMetadata(t *testing.T) {
	existing := []map[string]any{
		{"id": "a", "display_name": "pubs", "description": "original", "is_trial": true},
	}

	c := testClient(t, ServiceSearch, searchListHandler(t, existing))
	_, _, err := c.EnsureSearchIndex(context.Background(), config.SearchIndexSpec{
		Name:        "pubs",
		Description: "rewritten",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata cannot be updated")
}

func TestEnsureSearchIndexExistingUnchanged(t *testing.T) {
	existing := []map[string]any{
		{"id": "a", "display_name": "pubs", "description": "original", "is_trial": true},
	}

	c := testClient(t, ServiceSearch, searchListHandler(t, existing))
	idx, outcome, err := c.EnsureSearchIndex(context.Background(), config.SearchIndexSpec{
		Name:        "pubs",
		Description: "original",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, "a", idx.ID)
}

func TestDeleteSearchIndexDeletePendingIsUnchanged(t *testing.T) {
	existing := []map[string]any{
		{"id": "a", "display_name": "pubs", "status": "delete_pending"},
	}

	c := testClient(t, ServiceSearch, searchListHandler(t, existing))
	outcome, err := c.DeleteSearchIndex(context.Background(), "pubs")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestDeleteSearchIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /index_list", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"index_list": []map[string]any{
			{"id": "a", "display_name": "pubs", "status": "open"},
		}})
	})
	mux.HandleFunc("DELETE /index/a", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"acknowledged": true})
	})

	c := testClient(t, ServiceSearch, mux)
	outcome, err := c.DeleteSearchIndex(context.Background(), "pubs")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
}
