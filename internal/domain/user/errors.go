package user

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

var (
	ErrUnauthenticated         = apperror.New(apperror.ErrForbidden, "caller identity is missing")
	ErrInsufficientPermissions = apperror.New(apperror.ErrForbidden, "insufficient permissions")
)
