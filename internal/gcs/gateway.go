package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
)

const identityMappingDataType = "expression_identity_mapping#1.0.0"

// StorageGateway is a GCS storage gateway. Gateways are policy
// containers; path mapping happens on the collections attached to them.
type StorageGateway struct {
	ID            string
	DisplayName   string
	StorageType   string
	HighAssurance bool
}

// ListStorageGateways lists the gateways on the local endpoint.
func (m *Manager) ListStorageGateways(ctx context.Context) ([]StorageGateway, error) {
	res, err := m.gcs(ctx, "storage-gateway", "list", "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("list storage gateways: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, nil
	}

	// The CLI wraps list output as [{"data": [...]}].
	var gateways []StorageGateway
	for _, gw := range gjson.Parse(res.Stdout).Get("0.data").Array() {
		gateways = append(gateways, storageGatewayFromJSON(gw))
	}
	return gateways, nil
}

func storageGatewayFromJSON(doc gjson.Result) StorageGateway {
	return StorageGateway{
		ID:            doc.Get("id").String(),
		DisplayName:   doc.Get("display_name").String(),
		StorageType:   doc.Get("connector_id").String(),
		HighAssurance: doc.Get("high_assurance").Bool(),
	}
}

// FindStorageGateway looks a gateway up by display name or ID.
func (m *Manager) FindStorageGateway(ctx context.Context, nameOrID string) (*StorageGateway, error) {
	gateways, err := m.ListStorageGateways(ctx)
	if err != nil {
		return nil, err
	}
	for i := range gateways {
		if gateways[i].ID == nameOrID || gateways[i].DisplayName == nameOrID {
			return &gateways[i], nil
		}
	}
	return nil, nil
}

// EnsureStorageGateway creates the gateway if missing. An existing
// gateway is left alone unless the declared gateway forces an identity mapping
// refresh, since the CLI cannot diff mapping documents.
func (m *Manager) EnsureStorageGateway(ctx context.Context, spec config.StorageGatewaySpec) (*StorageGateway, globus.Outcome, error) {
	existing, err := m.FindStorageGateway(ctx, spec.DisplayName)
	if err != nil {
		return nil, globus.OutcomeUnchanged, err
	}

	if existing != nil {
		if spec.Force && spec.IdentityMapping != nil {
			if m.dryRun {
				return existing, globus.OutcomeUpdated, nil
			}
			if err := m.updateGatewayIdentityMapping(ctx, existing.ID, spec.StorageType, spec.IdentityMapping); err != nil {
				return existing, globus.OutcomeUnchanged, err
			}
			return existing, globus.OutcomeUpdated, nil
		}
		return existing, globus.OutcomeUnchanged, nil
	}

	if m.dryRun {
		return nil, globus.OutcomeCreated, nil
	}

	args := []string{
		"storage-gateway", "create", spec.StorageType, spec.DisplayName,
		"--format", "json",
	}
	// Gateways require at least one allowed domain. With more than one
	// domain the CLI also requires an identity mapping.
	for _, domain := range spec.AllowedDomains {
		args = append(args, "--domain", domain)
	}
	if spec.IdentityMapping != nil {
		mapping, err := identityMappingJSON(spec.IdentityMapping)
		if err != nil {
			return nil, globus.OutcomeUnchanged, err
		}
		args = append(args, "--identity-mapping", mapping)
	}
	if spec.HighAssurance {
		args = append(args, "--high-assurance")
	}
	if spec.AuthenticationTimeoutMins > 0 {
		args = append(args, "--authentication-timeout-mins", fmt.Sprint(spec.AuthenticationTimeoutMins))
	}
	// The MFA flags are only valid on high assurance gateways.
	if spec.RequireMFA {
		args = append(args, "--mfa")
	} else if spec.HighAssurance {
		args = append(args, "--no-mfa")
	}

	res, err := m.gcs(ctx, args...)
	if err != nil {
		return nil, globus.OutcomeUnchanged, fmt.Errorf("create storage gateway: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, globus.OutcomeUnchanged, cliError("create storage gateway", res)
	}

	doc := gjson.Parse(res.Stdout)
	if doc.Get("id").Exists() {
		gw := storageGatewayFromJSON(doc)
		return &gw, globus.OutcomeCreated, nil
	}
	created, err := m.FindStorageGateway(ctx, spec.DisplayName)
	if err != nil {
		return nil, globus.OutcomeCreated, err
	}
	return created, globus.OutcomeCreated, nil
}

// updateGatewayIdentityMapping re-applies the mapping document. The
// update subcommand only accepts mappings by file reference, so inline
// documents go through a temp file.
func (m *Manager) updateGatewayIdentityMapping(ctx context.Context, gatewayID, storageType string, mapping any) error {
	path, cleanup, err := identityMappingFile(mapping)
	if err != nil {
		return err
	}
	defer cleanup()

	// The gateway ID must come last, after all options.
	res, err := m.gcs(ctx,
		"storage-gateway", "update", storageType,
		"--identity-mapping", "file:"+path,
		gatewayID,
	)
	if err != nil {
		return fmt.Errorf("update storage gateway: %w", err)
	}
	if res.ExitCode != 0 {
		return cliError("update storage gateway", res)
	}
	return nil
}

// DeleteStorageGateway removes the gateway if it exists.
func (m *Manager) DeleteStorageGateway(ctx context.Context, nameOrID string) (globus.Outcome, error) {
	existing, err := m.FindStorageGateway(ctx, nameOrID)
	if err != nil {
		return globus.OutcomeUnchanged, err
	}
	if existing == nil {
		return globus.OutcomeUnchanged, nil
	}
	if m.dryRun {
		return globus.OutcomeDeleted, nil
	}

	res, err := m.gcs(ctx, "storage-gateway", "delete", existing.ID)
	if err != nil {
		return globus.OutcomeUnchanged, fmt.Errorf("delete storage gateway: %w", err)
	}
	if res.ExitCode != 0 {
		return globus.OutcomeUnchanged, cliError("delete storage gateway", res)
	}
	return globus.OutcomeDeleted, nil
}

// identityMappingDocument normalizes the configured mapping into a
// complete mapping document. A string is a file path, a list is a set
// of mapping rules, and a map is a full document.
func identityMappingDocument(mapping any) (map[string]any, error) {
	switch v := mapping.(type) {
	case string:
		data, err := os.ReadFile(v)
		if err != nil {
			return nil, fmt.Errorf("read identity mapping file: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse identity mapping file %s: %w", v, err)
		}
		return doc, nil
	case []any:
		return map[string]any{
			"DATA_TYPE": identityMappingDataType,
			"mappings":  v,
		}, nil
	case map[string]any:
		if _, ok := v["DATA_TYPE"]; !ok {
			v["DATA_TYPE"] = identityMappingDataType
		}
		return v, nil
	default:
		return nil, fmt.Errorf("identity_mapping must be a file path, a list of rules or a mapping document, got %T", mapping)
	}
}

func identityMappingJSON(mapping any) (string, error) {
	doc, err := identityMappingDocument(mapping)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode identity mapping: %w", err)
	}
	return string(data), nil
}

// identityMappingFile materializes the mapping as a file on disk and
// returns its path plus a cleanup func.
func identityMappingFile(mapping any) (string, func(), error) {
	if path, ok := mapping.(string); ok {
		if _, err := os.Stat(path); err != nil {
			return "", nil, fmt.Errorf("identity mapping file: %w", err)
		}
		return path, func() {}, nil
	}

	data, err := identityMappingJSON(mapping)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp("", "identity-mapping-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("write identity mapping: %w", err)
	}
	if _, err := f.WriteString(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write identity mapping: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write identity mapping: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
