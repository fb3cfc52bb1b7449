package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the read-only view of an employee owned by the HR directory.
type Profile struct {
	ID               string
	EmployeeCode     string
	FullName         string
	Department       string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	HireDate         time.Time
	ResignationDate  *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// UnknownDepartment labels rollups for employees without a profile.
const UnknownDepartment = "N/A"

// IsEmployedOn reports whether the employee is active and within their
// employment period on date.
func (p Profile) IsEmployedOn(date time.Time) bool {
	if p.EmploymentStatus != EmploymentStatusActive {
		return false
	}
	if !p.HireDate.IsZero() && date.Before(truncate(p.HireDate)) {
		return false
	}
	if p.ResignationDate != nil && date.After(truncate(*p.ResignationDate)) {
		return false
	}
	return true
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
