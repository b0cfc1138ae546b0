package provisioning

import (
	"fmt"
	"time"
)

// Phase defines the interface for a reconcile phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the reconcile logic for this phase.
	Provision(ctx *Context) error
}

// RunPhases executes all reconcile phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Logger.Printf("Starting reconciliation with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)

		err := phase.Provision(ctx)
		drainWarnings(ctx, phase.Name())
		if err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}

	ctx.Logger.Printf("Reconciliation completed in %v: %d of %d resources changed",
		time.Since(start).Round(time.Millisecond), ctx.State.Changed(), len(ctx.State.Results))
	return nil
}

// drainWarnings surfaces the non-fatal conditions the client collected
// during a phase, such as updates skipped for lack of a high-assurance
// session.
func drainWarnings(ctx *Context, phase string) {
	if ctx.Client == nil {
		return
	}
	for _, w := range ctx.Client.Warnings() {
		LogWarning(ctx.Observer, phase, w)
	}
}
