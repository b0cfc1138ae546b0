package globus

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func oauthClientFromJSON(doc gjson.Result) *OAuthClient {
	cl := &OAuthClient{
		ID:                 doc.Get("id").String(),
		ProjectID:          doc.Get("project").String(),
		Name:               doc.Get("name").String(),
		PublicClient:       doc.Get("public_client").Bool(),
		ClientType:         doc.Get("client_type").String(),
		Visibility:         doc.Get("visibility").String(),
		TermsAndConditions: doc.Get("links.terms_and_conditions").String(),
		PrivacyPolicy:      doc.Get("links.privacy_policy").String(),
		RequiredIDP:        doc.Get("required_idp").String(),
		PreselectIDP:       doc.Get("preselect_idp").String(),
	}
	for _, u := range doc.Get("redirect_uris").Array() {
		cl.RedirectURIs = append(cl.RedirectURIs, u.String())
	}
	return cl
}

// getOAuthClient finds a client by name within a project.
func (c *RealClient) getOAuthClient(ctx context.Context, name, projectID string) (*OAuthClient, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	doc, err := authSvc.get(ctx, "/api/clients", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, cl := range doc.Get("clients").Array() {
		if cl.Get("name").String() != name {
			continue
		}
		if projectID != "" && cl.Get("project").String() != projectID {
			continue
		}
		return oauthClientFromJSON(cl), nil
	}
	return nil, nil
}

// EnsureOAuthClient creates or updates an OAuth client. For new
// confidential clients a credential is minted; its secret appears only in
// the returned Credential and cannot be fetched again.
func (c *RealClient) EnsureOAuthClient(ctx context.Context, spec config.ClientSpec, projectID string) (*OAuthClient, *Credential, Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, nil, OutcomeUnchanged, err
	}

	var credential *Credential

	client, outcome, err := reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[OAuthClient]{
		Get: func(ctx context.Context, name string) (*OAuthClient, error) {
			return c.getOAuthClient(ctx, name, projectID)
		},
		Create: func(ctx context.Context) (*OAuthClient, error) {
			fields := map[string]any{
				"name":          spec.Name,
				"project":       projectID,
				"public_client": !config.ConfidentialClientTypes[spec.ClientType],
				"visibility":    spec.Visibility,
			}
			if len(spec.RedirectURIs) > 0 {
				fields["redirect_uris"] = spec.RedirectURIs
			}
			if spec.TermsAndConditions != "" {
				fields["terms_and_conditions"] = spec.TermsAndConditions
			}
			if spec.PrivacyPolicy != "" {
				fields["privacy_policy"] = spec.PrivacyPolicy
			}
			if spec.RequiredIDP != "" {
				fields["required_idp"] = spec.RequiredIDP
			}
			if spec.PreselectIDP != "" {
				fields["preselect_idp"] = spec.PreselectIDP
			}

			doc, err := authSvc.post(ctx, "/api/clients", map[string]any{"client": fields})
			if err != nil {
				return nil, FriendlyError(err)
			}
			created := oauthClientFromJSON(doc.Get("client"))

			if config.ConfidentialClientTypes[spec.ClientType] {
				credential, err = c.createCredential(ctx, created.ID, spec.Name)
				if err != nil {
					return nil, err
				}
			}
			return created, nil
		},
		NeedsUpdate: func(cl *OAuthClient) bool {
			if cl.Visibility != spec.Visibility {
				return true
			}
			if !stringSlicesEqual(cl.RedirectURIs, spec.RedirectURIs) {
				return true
			}
			if spec.TermsAndConditions != "" && cl.TermsAndConditions != spec.TermsAndConditions {
				return true
			}
			if spec.PrivacyPolicy != "" && cl.PrivacyPolicy != spec.PrivacyPolicy {
				return true
			}
			return false
		},
		Update: func(ctx context.Context, cl *OAuthClient) (*OAuthClient, error) {
			fields := map[string]any{
				"name":       spec.Name,
				"visibility": spec.Visibility,
			}
			if len(spec.RedirectURIs) > 0 {
				fields["redirect_uris"] = spec.RedirectURIs
			}
			if spec.TermsAndConditions != "" {
				fields["terms_and_conditions"] = spec.TermsAndConditions
			}
			if spec.PrivacyPolicy != "" {
				fields["privacy_policy"] = spec.PrivacyPolicy
			}

			doc, err := authSvc.put(ctx, "/api/clients/"+cl.ID, map[string]any{"client": fields})
			if err != nil {
				return nil, FriendlyError(err)
			}
			return oauthClientFromJSON(doc.Get("client")), nil
		},
	})

	return client, credential, outcome, err
}

// createCredential mints a client credential. The secret in the response
// is shown exactly once.
func (c *RealClient) createCredential(ctx context.Context, clientID, name string) (*Credential, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"credential": map[string]any{"name": name}}
	doc, err := authSvc.post(ctx, "/api/clients/"+clientID+"/credentials", body)
	if err != nil {
		return nil, FriendlyError(err)
	}

	cred := doc.Get("credential")
	return &Credential{
		ID:       cred.Get("id").String(),
		Name:     cred.Get("name").String(),
		ClientID: clientID,
		Secret:   cred.Get("secret").String(),
	}, nil
}

// DeleteOAuthClient deletes a client by name. Like projects, deletion
// needs a high-assurance session; refusals become warnings.
func (c *RealClient) DeleteOAuthClient(ctx context.Context, name, projectID string) (Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[OAuthClient]{
		Get: func(ctx context.Context, name string) (*OAuthClient, error) {
			return c.getOAuthClient(ctx, name, projectID)
		},
		Delete: func(ctx context.Context, cl *OAuthClient) error {
			_, err := authSvc.delete(ctx, "/api/clients/"+cl.ID)
			return err
		},
	})
	if err != nil && IsHighAssurance(err) {
		c.warnf("client %s: delete skipped, requires a high-assurance session, use the web console", name)
		return OutcomeSkipped, nil
	}
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}
