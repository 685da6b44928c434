package memory

import (
	"context"
	"sync"

	"staybook/internal/app/policies"
)

// PolicyStore keeps versioned policy bundles. Bundles are immutable once
// published; Publish with an existing version replaces it only in tests.
type PolicyStore struct {
	mu      sync.RWMutex
	bundles map[string]policies.PolicyBundle
	latest  string
}

func NewPolicyStore() *PolicyStore {
	return &PolicyStore{bundles: make(map[string]policies.PolicyBundle)}
}

// Publish registers a bundle and makes it the latest.
func (s *PolicyStore) Publish(bundle policies.PolicyBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[bundle.Version] = bundle
	s.latest = bundle.Version
}

// Snapshot resolves a bundle by version; empty version means latest.
func (s *PolicyStore) Snapshot(ctx context.Context, version string) (policies.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if version == "" {
		version = s.latest
	}
	bundle, ok := s.bundles[version]
	if !ok {
		return policies.PolicyBundle{}, policies.ErrSnapshotNotFound
	}
	return bundle, nil
}

var _ policies.PolicyPort = (*PolicyStore)(nil)
