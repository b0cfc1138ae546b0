package globus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func searchIndexFromJSON(doc gjson.Result) *SearchIndex {
	return &SearchIndex{
		ID:          doc.Get("id").String(),
		DisplayName: doc.Get("display_name").String(),
		Description: doc.Get("description").String(),
		IsTrial:     doc.Get("is_trial").Bool(),
		Status:      doc.Get("status").String(),
	}
}

// getSearchIndex finds a search index owned by the caller by display
// name. Display names are not unique; the first match wins.
func (c *RealClient) getSearchIndex(ctx context.Context, name string) (*SearchIndex, error) {
	search, err := c.service(ctx, ServiceSearch)
	if err != nil {
		return nil, err
	}

	doc, err := search.get(ctx, "/index_list", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, idx := range doc.Get("index_list").Array() {
		if idx.Get("display_name").String() == name {
			return searchIndexFromJSON(idx), nil
		}
	}
	return nil, nil
}

// trialIndexCount counts the trial indexes the caller owns.
func (c *RealClient) trialIndexCount(ctx context.Context) (int, error) {
	search, err := c.service(ctx, ServiceSearch)
	if err != nil {
		return 0, err
	}

	doc, err := search.get(ctx, "/index_list", nil)
	if err != nil {
		return 0, FriendlyError(err)
	}

	count := 0
	for _, idx := range doc.Get("index_list").Array() {
		if idx.Get("is_trial").Bool() {
			count++
		}
	}
	return count, nil
}

// EnsureSearchIndex creates a search index when missing. Index metadata
// is immutable after creation: a declared description that differs from
// the existing one is a hard error, since honoring it would silently
// leave remote state diverged.
func (c *RealClient) EnsureSearchIndex(ctx context.Context, spec config.SearchIndexSpec) (*SearchIndex, Outcome, error) {
	search, err := c.service(ctx, ServiceSearch)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	existing, err := c.getSearchIndex(ctx, spec.Name)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	if existing != nil {
		if spec.Description != "" && existing.Description != spec.Description {
			return nil, OutcomeUnchanged, fmt.Errorf(
				"search index %s already exists with description %q and index metadata cannot be updated, delete and recreate it to change the description",
				spec.Name, existing.Description)
		}
		return existing, OutcomeUnchanged, nil
	}

	// New indexes default to trial status, which is capped per identity.
	count, err := c.trialIndexCount(ctx)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	if count >= trialIndexLimit {
		return nil, OutcomeUnchanged, fmt.Errorf(
			"cannot create search index %s: %d trial indexes already exist (limit %d), contact support@globus.org to raise the limit",
			spec.Name, count, trialIndexLimit)
	}

	if c.dryRun {
		return nil, OutcomeCreated, nil
	}

	body := map[string]any{
		"display_name": spec.Name,
		"description":  spec.Description,
	}
	doc, err := search.post(ctx, "/index", body)
	if err != nil {
		return nil, OutcomeUnchanged, FriendlyError(err)
	}
	return searchIndexFromJSON(doc), OutcomeCreated, nil
}

// DeleteSearchIndex marks an index for deletion. An index already in
// delete_pending counts as deleted.
func (c *RealClient) DeleteSearchIndex(ctx context.Context, name string) (Outcome, error) {
	search, err := c.service(ctx, ServiceSearch)
	if err != nil {
		return OutcomeUnchanged, err
	}

	existing, err := c.getSearchIndex(ctx, name)
	if err != nil {
		return OutcomeUnchanged, err
	}
	if existing == nil || existing.Status == "delete_pending" {
		return OutcomeUnchanged, nil
	}

	if c.dryRun {
		return OutcomeDeleted, nil
	}

	if _, err := search.delete(ctx, "/index/"+existing.ID); err != nil {
		if IsNotFound(err) {
			return OutcomeUnchanged, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 409 &&
			strings.Contains(strings.ToLower(apiErr.Message), "delete_pending") {
			return OutcomeUnchanged, nil
		}
		return OutcomeUnchanged, FriendlyError(err)
	}
	return OutcomeDeleted, nil
}
