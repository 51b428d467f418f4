package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/metrics":               "/metrics",
		"/v1/users/42":           "/v1/users/:id",
		"/v1/users/me":           "/v1/users/me",
		"/v1/users/42/extra":     "/v1/users/42/extra",
		"/v1/tenants/7":          "/v1/tenants/:id",
		"/v1/tenants":            "/v1/tenants",
		"/v1/analytics/system":   "/v1/analytics/system",
		"/v1/users/42?limit=10":  "/v1/users/:id",
		"/v1/login/access-token": "/v1/login/access-token",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
