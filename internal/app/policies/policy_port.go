package policies

import (
	"context"
	"errors"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
)

var ErrSnapshotNotFound = errors.New("policies: snapshot version not found")

// PolicyBundle is one immutable, versioned configuration snapshot covering
// both pricing tables and the cancellation tiers. The engine never fetches
// configuration lazily; callers resolve a bundle and pass it down.
type PolicyBundle struct {
	Version      string
	Pricing      pricing.PolicySnapshot
	Cancellation *booking.CancellationPolicy
}

// PolicyPort resolves configuration snapshots. An empty version asks for the
// latest one.
type PolicyPort interface {
	Snapshot(ctx context.Context, version string) (PolicyBundle, error)
}
