package globus

// Per-service OAuth2 scopes requested with the client_credentials grant.
//
// Transfer, groups, flows and timers publish URL-form scopes; compute and
// auth use URN form. Both forms are accepted by the token endpoint.
var serviceScopes = map[string]string{
	ServiceTransfer: "urn:globus:auth:scope:transfer.api.globus.org:all",
	ServiceGroups:   "urn:globus:auth:scope:groups.api.globus.org:all",
	ServiceCompute:  "urn:globus:auth:scope:compute.api.globus.org:all",
	ServiceFlows:    "https://auth.globus.org/scopes/eec9b274-0c81-4334-bdc2-54e90e689b9a/manage_flows",
	ServiceTimers:   "https://auth.globus.org/scopes/524230d7-ea86-4a52-8312-86065a9e0417/timer",
	ServiceAuth:     "urn:globus:auth:scope:auth.globus.org:manage_projects",
	ServiceSearch:   "urn:globus:auth:scope:search.api.globus.org:all",
}

// Scopes returns the scopes needed to talk to the given services.
// Unknown services are skipped.
func Scopes(services ...string) []string {
	scopes := make([]string, 0, len(services))
	for _, svc := range services {
		if s, ok := serviceScopes[svc]; ok {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// FlowUserScope returns the per-flow scope minted when a flow is created.
// Runs of the flow are authorized against this scope.
func FlowUserScope(flowID string) string {
	return "https://auth.globus.org/scopes/" + flowID + "/flow_" + flowDashToUnderscore(flowID) + "_user"
}

func flowDashToUnderscore(id string) string {
	out := []byte(id)
	for i := range out {
		if out[i] == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}
