package auth

import (
	"context"
	"time"
)

// Store bundles the persistence operations required by the auth subsystem.
type Store interface {
	Identities() IdentityStore
	Tenants() TenantStore
	RevokedTokens() RevokedTokenStore
}

// IdentityStore manages identities. Identities are never physically removed;
// deactivation flips the active flag via Update.
type IdentityStore interface {
	Create(ctx context.Context, identity *Identity) error
	Find(ctx context.Context, id int64) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	List(ctx context.Context, offset, limit int) ([]*Identity, error)
	Update(ctx context.Context, id int64, upd IdentityUpdate) (*Identity, error)
}

// TenantStore manages tenants.
type TenantStore interface {
	Create(ctx context.Context, tenant *Tenant) error
	Find(ctx context.Context, id int64) (*Tenant, error)
	List(ctx context.Context, offset, limit int) ([]*Tenant, error)
	Update(ctx context.Context, id int64, upd TenantUpdate) (*Tenant, error)
}

// OverrideRevokedTokens returns a Store that behaves like base except that
// revocation queries go to revoked. Used to pair the PostgreSQL identity and
// tenant stores with a Redis revocation backend.
func OverrideRevokedTokens(base Store, revoked RevokedTokenStore) Store {
	return &overrideStore{Store: base, revoked: revoked}
}

type overrideStore struct {
	Store
	revoked RevokedTokenStore
}

func (s *overrideStore) RevokedTokens() RevokedTokenStore { return s.revoked }

// RevokedTokenStore answers membership queries over revoked token strings.
// Entries carry the token's own expiry so a sweeper can eventually drop
// rows that Decode would reject anyway.
type RevokedTokenStore interface {
	// Revoke records the token as revoked. Calling it twice with the same
	// token is a no-op, not an error.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
