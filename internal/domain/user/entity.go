package user

import "context"

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve leave and correct attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
	RoleSystem   Role = "system"   // Scheduled jobs
)

// SystemActorID identifies changes made by scheduled jobs in the audit trail.
const SystemActorID = "system"

// Principal is the authenticated caller as established by the identity boundary.
type Principal struct {
	EmployeeID string
	Role       Role
}

// IsOwner checks if the caller is the company owner
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}

// IsManager checks if the caller is manager or owner
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// Can reports whether the caller's role grants permission.
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored in ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.EmployeeID == "" {
		return Principal{}, false
	}
	return p, true
}

// SystemContext marks ctx as running on behalf of the scheduler.
func SystemContext(ctx context.Context) context.Context {
	return WithPrincipal(ctx, Principal{EmployeeID: SystemActorID, Role: RoleSystem})
}
