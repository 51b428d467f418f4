package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"gatehouse.dev/internal/audit"
	"gatehouse.dev/internal/auth"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
	TenantID *int64 `json:"tenant_id"`
}

// updateUserRequest covers administrative updates; every field is optional.
type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
	TenantID *int64  `json:"tenant_id"`
}

// updateSelfRequest restricts self-service updates to profile fields.
type updateSelfRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	if rest == "me" {
		switch r.Method {
		case http.MethodGet:
			a.readSelf(w, r)
		case http.MethodPut:
			a.updateSelf(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
		}
		return
	}

	id, err := pathID(r.URL.Path, "/v1/users/")
	if err != nil {
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.readUser(w, r, id)
	case http.MethodPut:
		a.updateUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperadmin(w, r); !ok {
		return
	}
	skip, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	users, err := a.store.Identities().List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []*auth.Identity{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireSuperadmin(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}
	role := auth.RoleUser
	if req.Role != "" {
		role = auth.Role(req.Role)
		if !role.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	identity := &auth.Identity{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Active:       true,
		Role:         role,
		TenantID:     req.TenantID,
	}
	if req.IsActive != nil {
		identity.Active = *req.IsActive
	}
	if err := a.store.Identities().Create(r.Context(), identity); err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			writeError(w, r, http.StatusBadRequest, "The user with this email already exists in the system")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "user_created", map[string]any{
		"actor_id": actor.ID,
		"user_id":  identity.ID,
		"role":     identity.Role,
	})
	writeJSON(w, http.StatusCreated, identity)
}

func (a *API) readSelf(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) updateSelf(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var req updateSelfRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	upd := auth.IdentityUpdate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}
	updated, err := a.store.Identities().Update(r.Context(), identity.ID, upd)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			writeError(w, r, http.StatusBadRequest, "The user with this email already exists in the system")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) readUser(w http.ResponseWriter, r *http.Request, id int64) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if !identity.CanAccessProfile(id) {
		writeError(w, r, http.StatusForbidden, "Not enough privileges")
		return
	}
	target, err := a.store.Identities().Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id int64) {
	actor, ok := requireSuperadmin(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	upd := auth.IdentityUpdate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Active:   req.IsActive,
		TenantID: req.TenantID,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		if !role.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		upd.Role = &role
	}

	updated, err := a.store.Identities().Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, r, http.StatusBadRequest, "The user with this email already exists in the system")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "user_updated", map[string]any{
		"actor_id": actor.ID,
		"user_id":  id,
	})
	writeJSON(w, http.StatusOK, updated)
}
