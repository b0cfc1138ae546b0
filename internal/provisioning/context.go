package provisioning

import (
	"context"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/gcs"
	"github.com/m1yag1/globusctl/internal/globus"
)

// Context wraps all dependencies and state needed for a reconcile phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Client   globus.Client
	GCS      *gcs.Manager // nil when the configuration has no gcs section
	Observer Observer
	Logger   Logger
	DryRun   bool
}

// NewContext creates a new reconcile context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	client globus.Client,
	gcsManager *gcs.Manager,
) *Context {
	observer := NewConsoleObserver()
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Client:   client,
		GCS:      gcsManager,
		Observer: observer,
		Logger:   observer,
	}
}

// Report records a resource outcome in state and emits the matching
// observer event.
func (ctx *Context) Report(phase, resource, name, id string, outcome globus.Outcome) {
	ctx.State.Record(Result{
		Phase:    phase,
		Resource: resource,
		Name:     name,
		ID:       id,
		Outcome:  outcome,
	})
	LogOutcome(ctx.Observer, phase, resource, name, id, outcome)
}
