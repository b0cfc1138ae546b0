package globus

import (
	"context"
	"fmt"
	"time"

	"github.com/m1yag1/globusctl/internal/retry"
)

// ReconcileFuncs defines the functions required for generic reconciliation.
type ReconcileFuncs[T any] struct {
	// Get retrieves the resource by name. Returns nil when absent.
	Get func(ctx context.Context, name string) (*T, error)
	// Create creates the resource.
	Create func(ctx context.Context) (*T, error)
	// NeedsUpdate checks if the resource needs to be updated.
	// If nil, an existing resource is left untouched.
	NeedsUpdate func(resource *T) bool
	// Update updates the resource.
	Update func(ctx context.Context, resource *T) (*T, error)
}

// reconcileResource ensures that a resource exists with the desired state.
// In dry-run mode the mutating step is skipped and the outcome reports
// what would have happened.
func reconcileResource[T any](ctx context.Context, name string, dryRun bool, funcs ReconcileFuncs[T]) (*T, Outcome, error) {
	resource, err := funcs.Get(ctx, name)
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("failed to get resource %s: %w", name, err)
	}

	if resource != nil {
		if funcs.NeedsUpdate == nil || funcs.Update == nil || !funcs.NeedsUpdate(resource) {
			return resource, OutcomeUnchanged, nil
		}
		if dryRun {
			return resource, OutcomeUpdated, nil
		}
		updated, err := funcs.Update(ctx, resource)
		if err != nil {
			return nil, OutcomeUnchanged, fmt.Errorf("failed to update resource %s: %w", name, err)
		}
		if updated == nil {
			updated = resource
		}
		return updated, OutcomeUpdated, nil
	}

	if dryRun {
		return nil, OutcomeCreated, nil
	}

	resource, err = funcs.Create(ctx)
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("failed to create resource %s: %w", name, err)
	}

	return resource, OutcomeCreated, nil
}

// DeleteFuncs defines the functions required for generic deletion.
type DeleteFuncs[T any] struct {
	// Get retrieves the resource by name. Returns nil when absent.
	Get func(ctx context.Context, name string) (*T, error)
	// Delete deletes the resource.
	Delete func(ctx context.Context, resource *T) error
}

// deleteResource deletes a resource, retrying conflicts while a pending
// operation still holds it.
func deleteResource[T any](ctx context.Context, name string, dryRun bool, funcs DeleteFuncs[T]) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	outcome := OutcomeUnchanged
	err := retry.WithExponentialBackoff(ctx, func() error {
		resource, err := funcs.Get(ctx, name)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get resource %s: %w", name, err))
		}
		if resource == nil {
			return nil // already absent
		}

		if dryRun {
			outcome = OutcomeDeleted
			return nil
		}

		if err := funcs.Delete(ctx, resource); err != nil {
			if IsConflict(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to delete resource %s: %w", name, err))
		}
		outcome = OutcomeDeleted
		return nil
	}, retry.WithMaxRetries(5), retry.WithInitialDelay(time.Second))

	return outcome, err
}

// stringSlicesEqual compares two string slices order-insensitively.
func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
		if seen[s] < 0 {
			return false
		}
	}
	return true
}
