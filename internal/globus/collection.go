package globus

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func collectionFromJSON(doc gjson.Result) *Collection {
	col := &Collection{
		ID:           doc.Get("id").String(),
		DisplayName:  doc.Get("display_name").String(),
		EndpointID:   doc.Get("endpoint_id").String(),
		Description:  doc.Get("description").String(),
		Organization: doc.Get("organization").String(),
		ContactEmail: doc.Get("contact_email").String(),
		Public:       doc.Get("public").Bool(),
	}
	for _, k := range doc.Get("keywords").Array() {
		col.Keywords = append(col.Keywords, k.String())
	}
	return col
}

// getCollection finds a collection by display name on an endpoint.
func (c *RealClient) getCollection(ctx context.Context, name, endpointID string) (*Collection, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("filter_endpoint_id", endpointID)
	query.Set("filter_display_name", name)

	doc, err := transfer.get(ctx, "/endpoint_manager/collections", query)
	if err != nil {
		if IsNotFound(err) || IsForbidden(err) {
			return nil, nil
		}
		return nil, FriendlyError(err)
	}

	for _, col := range doc.Get("DATA").Array() {
		if col.Get("display_name").String() == name {
			found := collectionFromJSON(col)
			found.EndpointID = endpointID
			return found, nil
		}
	}
	return nil, nil
}

// EnsureCollection creates or updates a collection on an endpoint.
func (c *RealClient) EnsureCollection(ctx context.Context, spec config.CollectionSpec, endpointID string) (*Collection, Outcome, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	return reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Collection]{
		Get: func(ctx context.Context, name string) (*Collection, error) {
			return c.getCollection(ctx, name, endpointID)
		},
		Create: func(ctx context.Context) (*Collection, error) {
			body := map[string]any{
				"DATA_TYPE":       "collection",
				"collection_type": spec.CollectionType,
				"display_name":    spec.Name,
				"public":          spec.Public,
			}

			// Mapped and guest collections name their base path differently.
			if spec.CollectionType == "guest" {
				body["guest_collection_base_path"] = spec.Path
				if spec.IdentityID != "" {
					body["identity_id"] = spec.IdentityID
				}
				if spec.UserCredentialID != "" {
					body["user_credential_id"] = spec.UserCredentialID
				}
			} else {
				body["mapped_collection_base_path"] = spec.Path
			}

			if spec.Description != "" {
				body["description"] = spec.Description
			}
			if spec.Organization != "" {
				body["organization"] = spec.Organization
			}
			if spec.ContactEmail != "" {
				body["contact_email"] = spec.ContactEmail
			}
			if len(spec.Keywords) > 0 {
				body["keywords"] = spec.Keywords
			}

			doc, err := transfer.post(ctx, "/endpoint/"+endpointID+"/collection", body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			created := collectionFromJSON(doc)
			if created.ID == "" {
				created.ID = doc.Get("collection_id").String()
			}
			created.DisplayName = spec.Name
			created.EndpointID = endpointID
			return created, nil
		},
		NeedsUpdate: func(col *Collection) bool {
			if spec.Description != "" && col.Description != spec.Description {
				return true
			}
			if spec.Organization != "" && col.Organization != spec.Organization {
				return true
			}
			if spec.ContactEmail != "" && col.ContactEmail != spec.ContactEmail {
				return true
			}
			if col.Public != spec.Public {
				return true
			}
			return len(spec.Keywords) > 0 && !stringSlicesEqual(col.Keywords, spec.Keywords)
		},
		Update: func(ctx context.Context, col *Collection) (*Collection, error) {
			body := map[string]any{"public": spec.Public}
			if spec.Description != "" {
				body["description"] = spec.Description
			}
			if spec.Organization != "" {
				body["organization"] = spec.Organization
			}
			if spec.ContactEmail != "" {
				body["contact_email"] = spec.ContactEmail
			}
			if len(spec.Keywords) > 0 {
				body["keywords"] = spec.Keywords
			}

			if _, err := transfer.put(ctx, "/collection/"+col.ID, body); err != nil {
				return nil, FriendlyError(err)
			}

			updated := *col
			updated.Description = spec.Description
			updated.Organization = spec.Organization
			updated.ContactEmail = spec.ContactEmail
			updated.Public = spec.Public
			updated.Keywords = spec.Keywords
			return &updated, nil
		},
	})
}

// DeleteCollection deletes a collection by display name on an endpoint.
func (c *RealClient) DeleteCollection(ctx context.Context, name, endpointID string) (Outcome, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[Collection]{
		Get: func(ctx context.Context, name string) (*Collection, error) {
			return c.getCollection(ctx, name, endpointID)
		},
		Delete: func(ctx context.Context, col *Collection) error {
			_, err := transfer.delete(ctx, "/collection/"+col.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}
