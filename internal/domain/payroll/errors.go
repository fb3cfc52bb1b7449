package payroll

import "errors"

var (
	ErrInvalidWorkingDays = errors.New("working days in period must be positive")
	ErrNegativeRate       = errors.New("overtime rate must not be negative")
	ErrMissingBaseSalary  = errors.New("employee has no base salary")
)
