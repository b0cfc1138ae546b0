package provisioning

import "github.com/m1yag1/globusctl/internal/globus"

// Result records the reconcile outcome of a single resource.
type Result struct {
	Phase    string
	Resource string // resource type, e.g. "project" or "flow"
	Name     string
	ID       string
	Outcome  globus.Outcome
}

// State holds the shared results of reconcile phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Identity results (populated by the identity phase)
	ProjectIDs map[string]string // project name -> id
	ClientIDs  map[string]string // client name -> id

	// Credentials minted for new confidential clients. Secrets are
	// one-time and must be surfaced before the run ends.
	Credentials []globus.Credential

	// Transfer results
	EndpointIDs   map[string]string // endpoint display name -> id
	CollectionIDs map[string]string // collection display name -> id

	// Automation results
	FlowIDs    map[string]string // flow title -> id
	FlowScopes map[string]string // flow title -> user scope

	// Connect results
	GCSEndpointID string

	// Results lists every reconciled resource in order.
	Results []Result
}

// NewState creates an empty reconcile state.
func NewState() *State {
	return &State{
		ProjectIDs:    make(map[string]string),
		ClientIDs:     make(map[string]string),
		EndpointIDs:   make(map[string]string),
		CollectionIDs: make(map[string]string),
		FlowIDs:       make(map[string]string),
		FlowScopes:    make(map[string]string),
	}
}

// Record appends a resource outcome.
func (s *State) Record(r Result) {
	s.Results = append(s.Results, r)
}

// Changed counts the results that modified remote state.
func (s *State) Changed() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome.Changed() {
			n++
		}
	}
	return n
}
