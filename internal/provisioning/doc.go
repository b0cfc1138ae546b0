// Package provisioning provides shared types, interfaces, and orchestration
// for reconciling Globus platform resources against a desired-state file.
//
// # Subpackages
//
//   - identity/ Auth projects, policies, OAuth clients and credentials
//   - transfer/ Transfer endpoints and collections
//   - groups/ Groups and membership
//   - automation/ Flows and timers
//   - compute/ Compute endpoints
//   - search/ Search indexes
//   - connect/ Globus Connect Server resources on the local host
//   - destroy/ Teardown of everything the configuration declares
//
// # Core Types
//
// Context carries configuration, state, the API client, and the observer.
// Phase defines a reconcile step with Name() and Provision() methods.
// State accumulates per-resource outcomes and the IDs later phases need.
package provisioning
