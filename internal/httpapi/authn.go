package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"gatehouse.dev/internal/auth"
)

// publicPaths are reachable without a bearer token.
var publicPaths = map[string]bool{
	"/healthz":                true,
	"/readyz":                 true,
	"/metrics":                true,
	"/v1/info":                true,
	"/v1/login/access-token":  true,
	"/v1/login/refresh-token": true,
}

// withAuth authenticates every non-public request and attaches the identity
// and raw token to the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		identity, err := a.flow.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInactiveAccount):
				writeError(w, r, http.StatusForbidden, "Inactive user")
			case errors.Is(err, auth.ErrNotFound):
				writeError(w, r, http.StatusNotFound, "User not found")
			case errors.Is(err, auth.ErrTokenRevoked), errors.Is(err, auth.ErrInvalidToken):
				writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
			default:
				writeError(w, r, http.StatusInternalServerError, "internal error")
			}
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// currentIdentity returns the authenticated identity, answering 401 when the
// middleware did not attach one.
func currentIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return identity, true
}

// requireSuperadmin answers 403 unless the caller holds the superadmin role.
func requireSuperadmin(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return nil, false
	}
	if !identity.IsSuperadmin() {
		writeError(w, r, http.StatusForbidden, "Not enough privileges")
		return nil, false
	}
	return identity, true
}
