package auth

import "testing"

func TestIdentityPredicates(t *testing.T) {
	super := &Identity{ID: 1, Role: RoleSuperadmin, Active: true}
	admin := &Identity{ID: 2, Role: RoleAdmin, Active: true}
	user := &Identity{ID: 3, Role: RoleUser, Active: true}
	inactive := &Identity{ID: 4, Role: RoleUser, Active: false}

	if !super.IsSuperadmin() {
		t.Error("superadmin not recognized")
	}
	if admin.IsSuperadmin() || user.IsSuperadmin() {
		t.Error("non-superadmin recognized as superadmin")
	}
	if !user.IsActive() || inactive.IsActive() {
		t.Error("IsActive mismatch")
	}

	var nilIdentity *Identity
	if nilIdentity.IsActive() || nilIdentity.IsSuperadmin() || nilIdentity.CanAccessProfile(1) {
		t.Error("nil identity must fail every predicate")
	}
}

func TestCanAccessProfile(t *testing.T) {
	super := &Identity{ID: 1, Role: RoleSuperadmin, Active: true}
	admin := &Identity{ID: 2, Role: RoleAdmin, Active: true}
	user := &Identity{ID: 3, Role: RoleUser, Active: true}

	cases := []struct {
		name   string
		caller *Identity
		target int64
		want   bool
	}{
		{"user reads own profile", user, 3, true},
		{"user reads someone else", user, 2, false},
		{"admin reads someone else", admin, 3, false},
		{"admin reads own profile", admin, 2, true},
		{"superadmin reads anyone", super, 3, true},
	}
	for _, tc := range cases {
		if got := tc.caller.CanAccessProfile(tc.target); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleSuperadmin, RoleAdmin, RoleUser} {
		if !role.Valid() {
			t.Errorf("%q should be valid", role)
		}
	}
	for _, role := range []Role{"", "root", "Superadmin"} {
		if role.Valid() {
			t.Errorf("%q should be invalid", role)
		}
	}
}
