package payroll

import (
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	_, err := r.Period()
	return err
}

func (r GenerateRequest) Period() (report.Period, error) {
	return report.ParsePeriod(r.StartDate, r.EndDate)
}

type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type PayrollReport struct {
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	GeneratedAt string            `json:"generated_at"`
	Lines       []PayrollLine     `json:"lines"`
	Skipped     []SkippedEmployee `json:"skipped"`
	TotalPay    decimal.Decimal   `json:"total_pay"`
}
