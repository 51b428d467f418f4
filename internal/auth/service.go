package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// TokenPair is the login response payload: a short-lived access token and a
// long-lived refresh token. The two are not linked; revoking one leaves the
// other valid until its own expiry or revocation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

const bearerTokenType = "bearer"

// Service orchestrates the authentication flow: credential checks at login,
// and decode → revocation check → identity resolution on every protected
// request.
type Service struct {
	store Store
	codec *Codec
}

// NewService constructs the authentication flow over the given store and
// token codec.
func NewService(store Store, codec *Codec) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	return &Service{store: store, codec: codec}, nil
}

// Codec exposes the token codec, e.g. for tests that need raw tokens.
func (s *Service) Codec() *Codec { return s.codec }

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, *Identity, error) {
	identity, err := s.store.Identities().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, nil, ErrInvalidCredentials
		}
		return TokenPair{}, nil, fmt.Errorf("lookup identity: %w", err)
	}
	if !VerifyPassword(identity.PasswordHash, password) {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if !identity.IsActive() {
		return TokenPair{}, nil, ErrInactiveAccount
	}

	subject := strconv.FormatInt(identity.ID, 10)
	access, _, err := s.codec.IssueAccess(subject)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.codec.IssueRefresh(subject)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerTokenType,
	}, identity, nil
}

// Authenticate resolves a bearer token to an identity. Order matters:
// structural validation first, then the revocation membership check, then
// the identity load. Inactive identities are rejected even with a valid
// token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.store.RevokedTokens().IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	identity, err := s.identityForSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !identity.IsActive() {
		return nil, ErrInactiveAccount
	}
	return identity, nil
}

// Logout revokes the presented token until its natural expiry. The token
// must still decode; its paired counterpart stays valid and must be revoked
// separately if both should die together.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return err
	}
	if err := s.store.RevokedTokens().Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token.
// The refresh token is returned unchanged; there is no rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.Kind() != TokenRefresh {
		return TokenPair{}, ErrInvalidToken
	}
	revoked, err := s.store.RevokedTokens().IsRevoked(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return TokenPair{}, ErrTokenRevoked
	}
	identity, err := s.identityForSubject(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, err
	}
	if !identity.IsActive() {
		return TokenPair{}, ErrInactiveAccount
	}

	access, _, err := s.codec.IssueAccess(claims.Subject)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
	}, nil
}

func (s *Service) identityForSubject(ctx context.Context, subject string) (*Identity, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	identity, err := s.store.Identities().Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return identity, nil
}
