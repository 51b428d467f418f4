package auth

// Role is the closed set of privilege levels an identity can hold.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Identity is an authenticable account. Superadmins may have no tenant;
// admins and users normally belong to one (not enforced by the store).
type Identity struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name,omitempty"`
	Active       bool   `json:"is_active"`
	Role         Role   `json:"role"`
	TenantID     *int64 `json:"tenant_id,omitempty"`
}

// Tenant is an isolation boundary grouping identities. SchemaName is only
// meaningful under the schema tenancy strategy, which is declared but not
// implemented; row-based filtering ignores it.
type Tenant struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	SchemaName *string `json:"schema_name,omitempty"`
	Active     bool    `json:"is_active"`
}

// IdentityUpdate carries optional fields for partial identity updates.
// Nil pointers leave the stored value unchanged.
type IdentityUpdate struct {
	Email    *string
	Password *string
	FullName *string
	Active   *bool
	Role     *Role
	TenantID *int64
}

// TenantUpdate carries optional fields for partial tenant updates.
type TenantUpdate struct {
	Name       *string
	SchemaName *string
	Active     *bool
}
