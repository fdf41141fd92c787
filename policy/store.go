// api/policy/store.go
package policy

import (
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/storage"
)

const policiesDocument = "access_policies.json"

// Store holds the per-dataset access policies. Exactly one policy exists
// per dataset name; Upsert replaces. Mutations are written through to the
// backing storage immediately.
type Store struct {
	mu       sync.RWMutex
	policies map[string]model.AccessPolicy
	storage  *storage.Store
	now      func() time.Time
}

// NewStore loads existing policies from storage.
func NewStore(st *storage.Store) (*Store, error) {
	s := &Store{
		policies: make(map[string]model.AccessPolicy),
		storage:  st,
		now:      time.Now,
	}

	var loaded []model.AccessPolicy
	found, err := st.Load(policiesDocument, &loaded)
	if err != nil {
		return nil, err
	}
	if found {
		for _, p := range loaded {
			s.policies[p.DatasetName] = p
		}
		logger.Debug("Loaded access policies", zap.Int("count", len(s.policies)))
	}
	return s, nil
}

// Upsert creates or replaces the policy for its dataset and persists.
func (s *Store) Upsert(p model.AccessPolicy) error {
	if len(p.RequiredPermissions) == 0 {
		p.RequiredPermissions = []string{"read"}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.policies[p.DatasetName] = p
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.storage.Save(policiesDocument, snapshot); err != nil {
		return err
	}
	logger.Info("Stored access policy", zap.String("dataset", p.DatasetName))
	return nil
}

// Lookup returns the policy for a dataset. Absence is a valid default-allow
// state, not an error.
func (s *Store) Lookup(datasetName string) (model.AccessPolicy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[datasetName]
	return p, ok
}

// List returns a snapshot of all policies.
func (s *Store) List() []model.AccessPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []model.AccessPolicy {
	out := make([]model.AccessPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	return out
}
