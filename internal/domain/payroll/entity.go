package payroll

import (
	"github.com/shopspring/decimal"
)

// Rates are the company-wide payroll constants.
type Rates struct {
	WorkingDaysInPeriod int
	OvertimeRatePerHour decimal.Decimal
	// DeductUnpaidLeave charges approved unpaid leave days at the per-diem rate.
	DeductUnpaidLeave bool
}

func DefaultRates() Rates {
	return Rates{
		WorkingDaysInPeriod: 26,
		OvertimeRatePerHour: decimal.NewFromInt(200),
		DeductUnpaidLeave:   true,
	}
}

func (r Rates) Validate() error {
	if r.WorkingDaysInPeriod <= 0 {
		return ErrInvalidWorkingDays
	}
	if r.OvertimeRatePerHour.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}

// PayrollLine is one employee's derived pay for a period. It is never persisted.
type PayrollLine struct {
	EmployeeID           string          `json:"employee_id"`
	FullName             string          `json:"full_name"`
	Department           string          `json:"department"`
	BaseSalary           decimal.Decimal `json:"base_salary"`
	PerDiem              decimal.Decimal `json:"per_diem"`
	AbsentDays           int             `json:"absent_days"`
	AbsenceDeduction     decimal.Decimal `json:"absence_deduction"`
	UnpaidLeaveDays      int             `json:"unpaid_leave_days"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	OvertimePay          decimal.Decimal `json:"overtime_pay"`
	TotalPay             decimal.Decimal `json:"total_pay"`
}
