package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used by tests and by the server when no
// database DSN is configured. Not suitable for multi-process deployments.
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[int64]*Identity
	tenants    map[int64]*Tenant
	revoked    map[string]time.Time
	nextID     int64
	nextTenant int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[int64]*Identity),
		tenants:    make(map[int64]*Tenant),
		revoked:    make(map[string]time.Time),
	}
}

func (s *MemoryStore) Identities() IdentityStore        { return (*memIdentityStore)(s) }
func (s *MemoryStore) Tenants() TenantStore             { return (*memTenantStore)(s) }
func (s *MemoryStore) RevokedTokens() RevokedTokenStore { return (*memRevokedTokenStore)(s) }

type memIdentityStore MemoryStore

func (s *memIdentityStore) Create(ctx context.Context, identity *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.TrimSpace(strings.ToLower(identity.Email))
	for _, existing := range s.identities {
		if existing.Email == email {
			return ErrAlreadyExists
		}
	}
	s.nextID++
	identity.ID = s.nextID
	identity.Email = email
	clone := *identity
	s.identities[identity.ID] = &clone
	return nil
}

func (s *memIdentityStore) Find(ctx context.Context, id int64) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *identity
	return &clone, nil
}

func (s *memIdentityStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memIdentityStore) List(ctx context.Context, offset, limit int) ([]*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		clone := *identity
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), nil
}

func (s *memIdentityStore) Update(ctx context.Context, id int64, upd IdentityUpdate) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		for otherID, other := range s.identities {
			if otherID != id && other.Email == email {
				return nil, ErrAlreadyExists
			}
		}
		identity.Email = email
	}
	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		identity.PasswordHash = hash
	}
	if upd.FullName != nil {
		identity.FullName = *upd.FullName
	}
	if upd.Active != nil {
		identity.Active = *upd.Active
	}
	if upd.Role != nil {
		identity.Role = *upd.Role
	}
	if upd.TenantID != nil {
		identity.TenantID = upd.TenantID
	}
	clone := *identity
	return &clone, nil
}

type memTenantStore MemoryStore

func (s *memTenantStore) Create(ctx context.Context, tenant *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tenants {
		if existing.Name == tenant.Name {
			return ErrAlreadyExists
		}
	}
	s.nextTenant++
	tenant.ID = s.nextTenant
	clone := *tenant
	s.tenants[tenant.ID] = &clone
	return nil
}

func (s *memTenantStore) Find(ctx context.Context, id int64) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *tenant
	return &clone, nil
}

func (s *memTenantStore) List(ctx context.Context, offset, limit int) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		clone := *tenant
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), nil
}

func (s *memTenantStore) Update(ctx context.Context, id int64, upd TenantUpdate) (*Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		for otherID, other := range s.tenants {
			if otherID != id && other.Name == *upd.Name {
				return nil, ErrAlreadyExists
			}
		}
		tenant.Name = *upd.Name
	}
	if upd.SchemaName != nil {
		tenant.SchemaName = upd.SchemaName
	}
	if upd.Active != nil {
		tenant.Active = *upd.Active
	}
	clone := *tenant
	return &clone, nil
}

type memRevokedTokenStore MemoryStore

func (s *memRevokedTokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[token]; !ok {
		s.revoked[token] = expiresAt.UTC()
	}
	return nil
}

func (s *memRevokedTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[token]
	return ok, nil
}

// DeleteExpired drops entries past their expiry, mirroring the PG store so
// the Sweeper works against either backend.
func (s *memRevokedTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for token, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, token)
			removed++
		}
	}
	return removed, nil
}

func paginate[T any](all []*T, offset, limit int) []*T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
