package employee

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.ErrNotFound, "employee not found")
)
