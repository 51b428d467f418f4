package auth

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc, err := NewService(store, codec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func seedIdentity(t *testing.T, store *MemoryStore, email, password string, active bool) *Identity {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	identity := &Identity{
		Email:        email,
		PasswordHash: hash,
		Active:       active,
		Role:         RoleUser,
	}
	if err := store.Identities().Create(context.Background(), identity); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return identity
}

func TestLoginSuccess(t *testing.T) {
	svc, store := newTestService(t)
	seeded := seedIdentity(t, store, "alice@example.com", "correct-horse", true)

	pair, identity, err := svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if identity.ID != seeded.ID {
		t.Errorf("identity id = %d, want %d", identity.ID, seeded.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair has empty tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", pair.TokenType)
	}
}

// Unknown email and wrong password must yield the exact same error.
func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)

	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, _, errWrong := svc.Login(context.Background(), "alice@example.com", "battery-staple")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", errWrong)
	}
}

func TestLoginInactive(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "bob@example.com", "correct-horse", false)

	_, _, err := svc.Login(context.Background(), "bob@example.com", "correct-horse")
	if !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}

func TestAuthenticateRoundtrip(t *testing.T) {
	svc, store := newTestService(t)
	seeded := seedIdentity(t, store, "alice@example.com", "correct-horse", true)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	identity, err := svc.Authenticate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.ID != seeded.ID {
		t.Errorf("identity id = %d, want %d", identity.ID, seeded.ID)
	}
}

// Logout revokes only the presented token; the paired refresh token keeps
// working until revoked on its own.
func TestLogoutRevokesPresentedTokenOnly(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Authenticate(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("revoked access token: got %v, want ErrTokenRevoked", err)
	}
	// The token still decodes; revocation is a membership check, not expiry.
	if _, err := svc.Codec().Decode(pair.AccessToken); err != nil {
		t.Errorf("revoked token must still decode: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Errorf("refresh token must survive access-token logout: %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("first Logout: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("second Logout must be a no-op: %v", err)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken != pair.RefreshToken {
		t.Error("refresh token must be returned unchanged")
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a new access token")
	}
	if _, err := svc.Authenticate(ctx, refreshed.AccessToken); err != nil {
		t.Errorf("new access token rejected: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	svc, store := newTestService(t)
	seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("got %v, want ErrTokenRevoked", err)
	}
}

// Deactivation takes effect immediately: outstanding tokens stop working.
func TestAuthenticateAfterDeactivation(t *testing.T) {
	svc, store := newTestService(t)
	seeded := seedIdentity(t, store, "alice@example.com", "correct-horse", true)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	inactive := false
	if _, err := store.Identities().Update(ctx, seeded.ID, IdentityUpdate{Active: &inactive}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.Authenticate(ctx, pair.AccessToken); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}
