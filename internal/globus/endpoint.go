package globus

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func endpointFromJSON(doc gjson.Result) *Endpoint {
	return &Endpoint{
		ID:              doc.Get("id").String(),
		DisplayName:     doc.Get("display_name").String(),
		Description:     doc.Get("description").String(),
		Organization:    doc.Get("organization").String(),
		ContactEmail:    doc.Get("contact_email").String(),
		Public:          doc.Get("public").Bool(),
		NetworkUse:      doc.Get("network_use").String(),
		SubscriptionID:  doc.Get("subscription_id").String(),
		IsGlobusConnect: doc.Get("is_globus_connect").Bool(),
		HostEndpointID:  doc.Get("host_endpoint_id").String(),
	}
}

// getEndpoint finds an endpoint owned by the caller by display name.
// Uses the fulltext search scoped to the caller's endpoints, then matches
// the display name exactly.
func (c *RealClient) getEndpoint(ctx context.Context, name string) (*Endpoint, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("filter_fulltext", name)
	query.Set("filter_scope", "my-endpoints")

	doc, err := transfer.get(ctx, "/endpoint_search", query)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, ep := range doc.Get("DATA").Array() {
		if ep.Get("display_name").String() == name {
			return endpointFromJSON(ep), nil
		}
	}
	return nil, nil
}

// ResolveEndpointID resolves an endpoint reference, accepting either an
// endpoint id or a display name.
func (c *RealClient) ResolveEndpointID(ctx context.Context, nameOrID string) (string, error) {
	if _, err := uuid.Parse(nameOrID); err == nil {
		return nameOrID, nil
	}

	ep, err := c.getEndpoint(ctx, nameOrID)
	if err != nil {
		return "", err
	}
	if ep == nil {
		return "", fmt.Errorf("endpoint not found: %s", nameOrID)
	}
	return ep.ID, nil
}

func endpointBody(spec config.EndpointSpec) map[string]any {
	body := map[string]any{
		"DATA_TYPE":    "endpoint",
		"display_name": spec.Name,
		"public":       spec.Public,
		"network_use":  spec.NetworkUse,
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
	if spec.SubscriptionID != "" {
		body["subscription_id"] = spec.SubscriptionID
	}
	return body
}

// EnsureEndpoint creates or updates a transfer endpoint. Server endpoints
// additionally register a GridFTP server document on creation.
func (c *RealClient) EnsureEndpoint(ctx context.Context, spec config.EndpointSpec) (*Endpoint, Outcome, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	return reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Endpoint]{
		Get: c.getEndpoint,
		Create: func(ctx context.Context) (*Endpoint, error) {
			doc, err := transfer.post(ctx, "/endpoint", endpointBody(spec))
			if err != nil {
				return nil, FriendlyError(err)
			}

			created := &Endpoint{
				ID:          doc.Get("id").String(),
				DisplayName: spec.Name,
				Public:      spec.Public,
				NetworkUse:  spec.NetworkUse,
			}

			if spec.EndpointType == "server" {
				server := map[string]any{
					"DATA_TYPE": "server",
					"hostname":  spec.Hostname,
					"port":      spec.Port,
					"scheme":    spec.Scheme,
				}
				if _, err := transfer.post(ctx, "/endpoint/"+created.ID+"/server", server); err != nil {
					return nil, fmt.Errorf("endpoint created but server registration failed: %w", FriendlyError(err))
				}
			}
			return created, nil
		},
		NeedsUpdate: func(ep *Endpoint) bool {
			if spec.Description != "" && ep.Description != spec.Description {
				return true
			}
			if spec.Organization != "" && ep.Organization != spec.Organization {
				return true
			}
			if spec.ContactEmail != "" && ep.ContactEmail != spec.ContactEmail {
				return true
			}
			if ep.Public != spec.Public {
				return true
			}
			return ep.NetworkUse != spec.NetworkUse
		},
		Update: func(ctx context.Context, ep *Endpoint) (*Endpoint, error) {
			if _, err := transfer.put(ctx, "/endpoint/"+ep.ID, endpointBody(spec)); err != nil {
				return nil, FriendlyError(err)
			}
			updated := *ep
			updated.Description = spec.Description
			updated.Organization = spec.Organization
			updated.ContactEmail = spec.ContactEmail
			updated.Public = spec.Public
			updated.NetworkUse = spec.NetworkUse
			return &updated, nil
		},
	})
}

// DeleteEndpoint deletes an endpoint by display name.
func (c *RealClient) DeleteEndpoint(ctx context.Context, name string) (Outcome, error) {
	transfer, err := c.service(ctx, ServiceTransfer)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[Endpoint]{
		Get: c.getEndpoint,
		Delete: func(ctx context.Context, ep *Endpoint) error {
			_, err := transfer.delete(ctx, "/endpoint/"+ep.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}
