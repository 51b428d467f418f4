package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

// handleAnalytics dispatches /v1/analytics/{system,users,tenants,activity}.
// Any authenticated identity may read metrics; they are aggregates without
// per-identity detail.
func (a *API) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := currentIdentity(w, r); !ok {
		return
	}
	if a.metrics == nil {
		writeError(w, r, http.StatusServiceUnavailable, "analytics unavailable")
		return
	}

	section := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/analytics/"), "/")
	switch section {
	case "system":
		m, err := a.metrics.System(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	case "users":
		m, err := a.metrics.Users(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	case "tenants":
		m, err := a.metrics.Tenants(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	case "activity":
		days := 30
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, r, http.StatusBadRequest, "days must be a positive integer")
				return
			}
			days = parsed
		}
		m, err := a.metrics.Activity(r.Context(), days)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	default:
		http.NotFound(w, r)
	}
}
