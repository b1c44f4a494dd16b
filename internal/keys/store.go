package keys

import "sync"

// Provisioned is a role's keypair together with how it was funded.
type Provisioned struct {
	Keys    Keypair
	Funding FundingResult
}

// Store holds the process-wide keypair per role. Access is guarded by a
// read-write lock; Put is last-writer-wins, which only matters if two setup
// paths race on the same role (the facade collapses those with singleflight).
// Nothing here is persisted: keys live for the lifetime of the process.
type Store struct {
	mu     sync.RWMutex
	byRole map[Role]Provisioned
}

// NewStore creates an empty key store.
func NewStore() *Store {
	return &Store{byRole: make(map[Role]Provisioned)}
}

// Get returns the provisioned entry for a role.
func (s *Store) Get(role Role) (Provisioned, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byRole[role]
	return p, ok
}

// Put stores the provisioned entry for a role, replacing any previous one.
func (s *Store) Put(role Role, p Provisioned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRole[role] = p
}

// Ready reports whether both roles hold usable keypairs.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range []Role{RoleIssuer, RoleDistributor} {
		p, ok := s.byRole[role]
		if !ok || p.Keys.IsZero() || p.Funding.Failed() {
			return false
		}
	}
	return true
}
