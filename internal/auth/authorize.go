package auth

// Access-control predicates. These are pure boolean checks over an already
// authenticated identity; callers translate false into the user-visible
// rejection.

// IsActive reports whether the identity may complete login or any protected
// operation.
func (i *Identity) IsActive() bool {
	return i != nil && i.Active
}

// IsSuperadmin gates tenant management and global identity management.
func (i *Identity) IsSuperadmin() bool {
	return i != nil && i.Role == RoleSuperadmin
}

// CanAccessProfile allows identities to read their own profile, with a
// superadmin override.
func (i *Identity) CanAccessProfile(targetID int64) bool {
	if i == nil {
		return false
	}
	return i.ID == targetID || i.IsSuperadmin()
}
