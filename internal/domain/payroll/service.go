package payroll

import "context"

type PayrollService interface {
	// Generate derives payroll lines for every employee with records in the period
	Generate(ctx context.Context, req GenerateRequest) (PayrollReport, error)
}
