package globus

import "os"

// Service names used to select a base URL and scope.
const (
	ServiceAuth     = "auth"
	ServiceTransfer = "transfer"
	ServiceGroups   = "groups"
	ServiceCompute  = "compute"
	ServiceFlows    = "flows"
	ServiceTimers   = "timers"
	ServiceSearch   = "search"
)

// productionURLs are the per-service API base URLs.
var productionURLs = map[string]string{
	ServiceAuth:     "https://auth.globus.org/v2",
	ServiceTransfer: "https://transfer.api.globus.org/v0.10",
	ServiceGroups:   "https://groups.api.globus.org/v2",
	ServiceCompute:  "https://compute.api.globus.org/v2",
	ServiceFlows:    "https://flows.globus.org",
	ServiceTimers:   "https://timer.automate.globus.org",
	ServiceSearch:   "https://search.api.globus.org/v1",
}

// testURLs are the sandbox environment base URLs, selected by setting
// GLOBUS_SDK_ENVIRONMENT=test.
var testURLs = map[string]string{
	ServiceAuth:     "https://auth.test.globuscs.info/v2",
	ServiceTransfer: "https://transfer.api.test.globuscs.info/v0.10",
	ServiceGroups:   "https://groups.api.test.globuscs.info/v2",
	ServiceCompute:  "https://compute.api.test.globuscs.info",
	ServiceFlows:    "https://test.flows.automate.globus.org",
	ServiceTimers:   "https://timer.test.globuscs.info",
	ServiceSearch:   "https://search.api.test.globuscs.info/v1",
}

// tokenURL is the OAuth2 token endpoint for the client_credentials grant.
const tokenURL = "https://auth.globus.org/v2/oauth2/token"
const testTokenURL = "https://auth.test.globuscs.info/v2/oauth2/token"

// BaseURL returns the API base URL for a service, honoring the
// GLOBUS_SDK_ENVIRONMENT environment variable.
func BaseURL(service string) string {
	if os.Getenv("GLOBUS_SDK_ENVIRONMENT") == "test" {
		return testURLs[service]
	}
	return productionURLs[service]
}

// TokenURL returns the OAuth2 token endpoint for the active environment.
func TokenURL() string {
	if os.Getenv("GLOBUS_SDK_ENVIRONMENT") == "test" {
		return testTokenURL
	}
	return tokenURL
}
