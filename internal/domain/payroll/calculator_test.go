package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		rollup report.EmployeeRollup
		rates  Rates
		want   string
	}{
		{
			name:   "absences and overtime",
			base:   "26000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", AbsentDays: 2, OvertimeHours: 3},
			rates:  DefaultRates(),
			want:   "24600",
		},
		{
			name:   "no deductions",
			base:   "5200000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", PresentDays: 26},
			rates:  DefaultRates(),
			want:   "5200000",
		},
		{
			name:   "unpaid leave deducted at per diem",
			base:   "26000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", LeaveDays: 3, UnpaidLeaveDays: 1},
			rates:  DefaultRates(),
			want:   "25000",
		},
		{
			name:   "unpaid leave policy disabled",
			base:   "26000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", UnpaidLeaveDays: 1},
			rates:  Rates{WorkingDaysInPeriod: 26, OvertimeRatePerHour: decimal.NewFromInt(200)},
			want:   "26000",
		},
		{
			name:   "rounds to two places at the end",
			base:   "10000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", AbsentDays: 1},
			rates:  Rates{WorkingDaysInPeriod: 3, OvertimeRatePerHour: decimal.Zero},
			want:   "6666.67",
		},
		{
			name:   "fractional overtime",
			base:   "26000",
			rollup: report.EmployeeRollup{EmployeeID: "e1", OvertimeHours: 0.25},
			rates:  DefaultRates(),
			want:   "26050",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Calculate(decimal.RequireFromString(tt.base), tt.rollup, tt.rates)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(line.TotalPay), "got %s", line.TotalPay)
		})
	}
}

func TestCalculate_Components(t *testing.T) {
	line, err := Calculate(decimal.NewFromInt(26000), report.EmployeeRollup{
		EmployeeID:    "e1",
		FullName:      "Ayu",
		Department:    "Engineering",
		AbsentDays:    2,
		OvertimeHours: 3,
	}, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, "1000", line.PerDiem.String())
	assert.Equal(t, "2000", line.AbsenceDeduction.String())
	assert.Equal(t, "600", line.OvertimePay.String())
	assert.Equal(t, "Engineering", line.Department)
}

func TestCalculate_OvertimeUsesUnroundedHours(t *testing.T) {
	line, err := Calculate(decimal.NewFromInt(26000), report.EmployeeRollup{
		EmployeeID:    "e1",
		OvertimeHours: 0.004,
	}, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, "0", line.OvertimeHours.String())
	assert.Equal(t, "0.8", line.OvertimePay.String())
	assert.Equal(t, "26000.8", line.TotalPay.String())
}

func TestCalculate_InvalidRates(t *testing.T) {
	_, err := Calculate(decimal.NewFromInt(1000), report.EmployeeRollup{}, Rates{WorkingDaysInPeriod: 0})
	assert.ErrorIs(t, err, ErrInvalidWorkingDays)

	_, err = Calculate(decimal.NewFromInt(1000), report.EmployeeRollup{}, Rates{WorkingDaysInPeriod: 26, OvertimeRatePerHour: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrNegativeRate)
}
