package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"gatehouse.dev/internal/analytics"
	"gatehouse.dev/internal/auth"
	"gatehouse.dev/internal/obs"
)

// ReadyProbe reports readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the authentication flow, identity and tenant
// stores, and the analytics service.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	flow    *auth.Service
	store   auth.Store
	metrics *analytics.Service

	corsOrigins []string
}

// Option configures the API.
type Option func(*API)

// WithCORSOrigins sets the allowed cross-origin request origins.
func WithCORSOrigins(origins []string) Option {
	return func(a *API) { a.corsOrigins = origins }
}

// WithAnalytics wires the analytics aggregation service. When absent the
// analytics endpoints answer 503.
func WithAnalytics(svc *analytics.Service) Option {
	return func(a *API) { a.metrics = svc }
}

// New constructs the API and registers all routes.
func New(rp ReadyProbe, version string, flow *auth.Service, store auth.Store, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		flow:       flow,
		store:      store,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/login/access-token", a.handleLogin)
	a.mux.HandleFunc("/v1/login/refresh-token", a.handleRefresh)
	a.mux.HandleFunc("/v1/login/test-token", a.handleTestToken)
	a.mux.HandleFunc("/v1/logout", a.handleLogout)

	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/tenants", a.handleTenantsCollection)
	a.mux.HandleFunc("/v1/tenants/", a.handleTenantResource)
	a.mux.HandleFunc("/v1/analytics/", a.handleAnalytics)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = LoggingJSON(h)
	h = SecurityHeaders(h)
	h = CORS(h, a.corsOrigins)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "gatehouse-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "gatehouse-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
