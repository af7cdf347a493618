package domain

import "context"

// ResourceImporter hands a canonical resource to the persistence
// collaborator. The aggregator never persists anything itself; the
// collaborator maps Type into its own storage taxonomy.
type ResourceImporter interface {
	// Import stores the resource in the given container and returns the
	// identifier assigned by the collaborator.
	Import(ctx context.Context, resource *Resource, containerID string) (string, error)
}

// UsageGate is consulted before expensive operations such as indexing a
// resource for question answering. Plain search and browse paths are not
// gated.
type UsageGate interface {
	// CheckIndexing returns ErrUsageLimitExceeded when the caller may not
	// run another indexing operation.
	CheckIndexing(ctx context.Context, userID string) error
}
