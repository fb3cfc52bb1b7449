package authz

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
)

// Caller returns the authenticated principal stored in ctx.
func Caller(ctx context.Context) (user.Principal, error) {
	p, ok := user.PrincipalFrom(ctx)
	if !ok {
		return user.Principal{}, user.ErrUnauthenticated
	}
	return p, nil
}

// Require returns the caller when its role grants permission.
func Require(ctx context.Context, permission user.Permission) (user.Principal, error) {
	p, err := Caller(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !p.Can(permission) {
		return user.Principal{}, fmt.Errorf("%w: required '%s', but role is '%s'", user.ErrInsufficientPermissions, permission, p.Role)
	}
	return p, nil
}

// RequireSelfOr allows the caller to act on its own data, or on anyone's
// when it holds permission.
func RequireSelfOr(ctx context.Context, employeeID string, permission user.Permission) (user.Principal, error) {
	p, err := Caller(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if p.EmployeeID == employeeID || p.Can(permission) {
		return p, nil
	}
	return user.Principal{}, fmt.Errorf("%w: required '%s'", user.ErrInsufficientPermissions, permission)
}
