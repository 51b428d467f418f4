package httpapi

import (
	"errors"
	"net/http"

	"gatehouse.dev/internal/audit"
	"gatehouse.dev/internal/auth"
)

type createTenantRequest struct {
	Name       string  `json:"name"`
	SchemaName *string `json:"schema_name"`
	IsActive   *bool   `json:"is_active"`
}

type updateTenantRequest struct {
	Name       *string `json:"name"`
	SchemaName *string `json:"schema_name"`
	IsActive   *bool   `json:"is_active"`
}

func (a *API) handleTenantsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTenants(w, r)
	case http.MethodPost:
		a.createTenant(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTenantResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/v1/tenants/")
	if err != nil {
		writeError(w, r, http.StatusNotFound, "Tenant not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.readTenant(w, r, id)
	case http.MethodPut:
		a.updateTenant(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperadmin(w, r); !ok {
		return
	}
	skip, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tenants, err := a.store.Tenants().List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if tenants == nil {
		tenants = []*auth.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireSuperadmin(w, r)
	if !ok {
		return
	}
	var req createTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	tenant := &auth.Tenant{
		Name:       req.Name,
		SchemaName: req.SchemaName,
		Active:     true,
	}
	if req.IsActive != nil {
		tenant.Active = *req.IsActive
	}
	if err := a.store.Tenants().Create(r.Context(), tenant); err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			writeError(w, r, http.StatusBadRequest, "The tenant with this name already exists in the system")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "tenant_created", map[string]any{
		"actor_id":  actor.ID,
		"tenant_id": tenant.ID,
		"name":      tenant.Name,
	})
	writeJSON(w, http.StatusCreated, tenant)
}

func (a *API) readTenant(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := requireSuperadmin(w, r); !ok {
		return
	}
	tenant, err := a.store.Tenants().Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Tenant not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request, id int64) {
	actor, ok := requireSuperadmin(w, r)
	if !ok {
		return
	}
	var req updateTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	upd := auth.TenantUpdate{
		Name:       req.Name,
		SchemaName: req.SchemaName,
		Active:     req.IsActive,
	}
	updated, err := a.store.Tenants().Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "Tenant not found")
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, r, http.StatusBadRequest, "The tenant with this name already exists in the system")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "tenant_updated", map[string]any{
		"actor_id":  actor.ID,
		"tenant_id": id,
	})
	writeJSON(w, http.StatusOK, updated)
}
