// Package principal carries the authenticated caller through use cases.
// Handlers resolve it once per request and pass it explicitly; nothing reads
// a "current user" from ambient state.
package principal

// Role enumerates the capabilities a caller can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal identifies the verified caller of a use case.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the principal may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsAdmin() || (p.UserID != 0 && p.UserID == ownerID)
}
