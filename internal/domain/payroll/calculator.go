package payroll

import (
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Calculate derives pay from a base salary and the employee's rollup:
//
//	perDiem     = base / workingDays
//	total       = base - absentDays*perDiem - unpaidLeaveDays*perDiem + overtimeHours*rate
//
// Intermediate values keep full precision; every amount is rounded to two
// places only when the line is produced.
func Calculate(baseSalary decimal.Decimal, rollup report.EmployeeRollup, rates Rates) (PayrollLine, error) {
	if err := rates.Validate(); err != nil {
		return PayrollLine{}, err
	}

	perDiem := baseSalary.Div(decimal.NewFromInt(int64(rates.WorkingDaysInPeriod)))
	absenceDeduction := perDiem.Mul(decimal.NewFromInt(int64(rollup.AbsentDays)))

	unpaidLeaveDeduction := decimal.Zero
	if rates.DeductUnpaidLeave {
		unpaidLeaveDeduction = perDiem.Mul(decimal.NewFromInt(int64(rollup.UnpaidLeaveDays)))
	}

	overtimeHours := decimal.NewFromFloat(rollup.OvertimeHours)
	overtimePay := overtimeHours.Mul(rates.OvertimeRatePerHour)

	total := baseSalary.Sub(absenceDeduction).Sub(unpaidLeaveDeduction).Add(overtimePay)

	return PayrollLine{
		EmployeeID:           rollup.EmployeeID,
		FullName:             rollup.FullName,
		Department:           rollup.Department,
		BaseSalary:           baseSalary.Round(moneyPlaces),
		PerDiem:              perDiem.Round(moneyPlaces),
		AbsentDays:           rollup.AbsentDays,
		AbsenceDeduction:     absenceDeduction.Round(moneyPlaces),
		UnpaidLeaveDays:      rollup.UnpaidLeaveDays,
		UnpaidLeaveDeduction: unpaidLeaveDeduction.Round(moneyPlaces),
		OvertimeHours:        overtimeHours.Round(moneyPlaces),
		OvertimePay:          overtimePay.Round(moneyPlaces),
		TotalPay:             total.Round(moneyPlaces),
	}, nil
}
