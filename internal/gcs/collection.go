package gcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
)

// Collection is a mapped collection on a storage gateway.
type Collection struct {
	ID               string
	DisplayName      string
	StorageGatewayID string
	Description      string
	Public           bool
}

// ListCollections lists the collections on the local endpoint.
func (m *Manager) ListCollections(ctx context.Context) ([]Collection, error) {
	res, err := m.gcs(ctx, "collection", "list", "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, nil
	}

	var collections []Collection
	for _, c := range gjson.Parse(res.Stdout).Array() {
		collections = append(collections, collectionFromJSON(c))
	}
	return collections, nil
}

func collectionFromJSON(doc gjson.Result) Collection {
	return Collection{
		ID:               doc.Get("id").String(),
		DisplayName:      doc.Get("display_name").String(),
		StorageGatewayID: doc.Get("storage_gateway_id").String(),
		Description:      doc.Get("description").String(),
		Public:           doc.Get("public").Bool(),
	}
}

// FindCollection looks a collection up by ID or display name. Name
// lookups retry with backoff because freshly created collections take
// a few seconds to appear in list output.
func (m *Manager) FindCollection(ctx context.Context, nameOrID string) (*Collection, error) {
	find := func() (*Collection, error) {
		collections, err := m.ListCollections(ctx)
		if err != nil {
			return nil, err
		}
		for i := range collections {
			if collections[i].ID == nameOrID || collections[i].DisplayName == nameOrID {
				return &collections[i], nil
			}
		}
		return nil, nil
	}

	const attempts = 3
	for attempt := 0; attempt < attempts; attempt++ {
		found, err := find()
		if err != nil || found != nil {
			return found, err
		}
		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.pollInterval << attempt):
			}
		}
	}
	return nil, nil
}

// EnsureCollection creates or updates a mapped collection on its
// storage gateway.
func (m *Manager) EnsureCollection(ctx context.Context, spec config.GCSCollectionSpec) (*Collection, globus.Outcome, error) {
	gateway, err := m.FindStorageGateway(ctx, spec.StorageGateway)
	if err != nil {
		return nil, globus.OutcomeUnchanged, err
	}
	if gateway == nil {
		return nil, globus.OutcomeUnchanged, fmt.Errorf("storage gateway %s not found", spec.StorageGateway)
	}

	existing, err := m.FindCollection(ctx, spec.DisplayName)
	if err != nil {
		return nil, globus.OutcomeUnchanged, err
	}

	if existing != nil {
		if spec.Description != "" && existing.Description != spec.Description {
			if m.dryRun {
				return existing, globus.OutcomeUpdated, nil
			}
			return m.updateCollection(ctx, existing, spec)
		}
		return existing, globus.OutcomeUnchanged, nil
	}

	if m.dryRun {
		return nil, globus.OutcomeCreated, nil
	}

	args := []string{
		"collection", "create", gateway.ID, spec.BasePath, spec.DisplayName,
		"--format", "json",
	}
	if spec.Description != "" {
		args = append(args, "--description", spec.Description)
	}
	if spec.Public {
		args = append(args, "--public")
	}
	// Create only knows --delete-protected; turning protection off
	// needs a follow-up update call.
	if spec.DeleteProtection == nil || *spec.DeleteProtection {
		args = append(args, "--delete-protected")
	}
	if spec.RequireHighAssurance {
		args = append(args, "--restrict-transfers-to-high-assurance", "all")
	}

	res, err := m.gcs(ctx, args...)
	if err != nil {
		return nil, globus.OutcomeUnchanged, fmt.Errorf("create collection: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, globus.OutcomeUnchanged, cliError("create collection", res)
	}

	created := collectionFromJSON(gjson.Parse(res.Stdout))
	if created.ID == "" {
		found, err := m.FindCollection(ctx, spec.DisplayName)
		if err != nil {
			return nil, globus.OutcomeCreated, err
		}
		if found == nil {
			return nil, globus.OutcomeCreated, errors.New("collection created but not found in list output")
		}
		created = *found
	}

	if spec.DeleteProtection != nil && !*spec.DeleteProtection {
		res, err := m.gcs(ctx, "collection", "update", created.ID, "--no-delete-protected", "--format", "json")
		if err != nil {
			return &created, globus.OutcomeCreated, fmt.Errorf("disable delete protection: %w", err)
		}
		if res.ExitCode != 0 {
			return &created, globus.OutcomeCreated, cliError("disable delete protection", res)
		}
	}
	return &created, globus.OutcomeCreated, nil
}

func (m *Manager) updateCollection(ctx context.Context, existing *Collection, spec config.GCSCollectionSpec) (*Collection, globus.Outcome, error) {
	args := []string{"collection", "update", existing.ID, "--format", "json"}
	if spec.Description != "" {
		args = append(args, "--description", spec.Description)
	}

	res, err := m.gcs(ctx, args...)
	if err != nil {
		return existing, globus.OutcomeUnchanged, fmt.Errorf("update collection: %w", err)
	}
	if res.ExitCode != 0 {
		return existing, globus.OutcomeUnchanged, cliError("update collection", res)
	}

	updated := *existing
	updated.Description = spec.Description
	return &updated, globus.OutcomeUpdated, nil
}

// DeleteCollection removes the collection if it exists.
func (m *Manager) DeleteCollection(ctx context.Context, nameOrID string) (globus.Outcome, error) {
	existing, err := m.FindCollection(ctx, nameOrID)
	if err != nil {
		return globus.OutcomeUnchanged, err
	}
	if existing == nil {
		return globus.OutcomeUnchanged, nil
	}
	if m.dryRun {
		return globus.OutcomeDeleted, nil
	}

	res, err := m.gcs(ctx, "collection", "delete", existing.ID)
	if err != nil {
		return globus.OutcomeUnchanged, fmt.Errorf("delete collection: %w", err)
	}
	if res.ExitCode != 0 {
		return globus.OutcomeUnchanged, cliError("delete collection", res)
	}
	return globus.OutcomeDeleted, nil
}
