package httpapi

import (
	"errors"
	"net/http"

	"gatehouse.dev/internal/audit"
	"gatehouse.dev/internal/auth"
	"gatehouse.dev/internal/obs"
)

// handleLogin implements the OAuth2 password flow: form-encoded username and
// password in, token pair out.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	pair, identity, err := a.flow.Login(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			obs.ObserveLogin("failure")
			writeError(w, r, http.StatusBadRequest, "Incorrect email or password")
		case errors.Is(err, auth.ErrInactiveAccount):
			obs.ObserveLogin("failure")
			writeError(w, r, http.StatusBadRequest, "Inactive user")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	obs.ObserveLogin("success")
	_ = audit.LogEvent(r.Context(), "login", map[string]any{
		"identity_id": identity.ID,
		"email":       identity.Email,
	})
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleRefresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, r, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := a.flow.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInactiveAccount):
			writeError(w, r, http.StatusBadRequest, "Inactive user")
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrTokenRevoked), errors.Is(err, auth.ErrInvalidToken):
			writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// handleLogout revokes the presented access token. Revoking twice is a no-op.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := a.flow.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	obs.ObserveRevocation()
	_ = audit.LogEvent(r.Context(), "logout", map[string]any{
		"identity_id": identity.ID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// handleTestToken echoes the authenticated identity, proving the token works.
func (a *API) handleTestToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
