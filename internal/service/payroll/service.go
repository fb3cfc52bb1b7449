package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/authz"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

const (
	skipNoProfile = "no employee profile"
	skipNoRecords = "no attendance records in period"
)

type PayrollServiceImpl struct {
	reportService report.ReportService
	profileRepo   employee.ProfileRepository
	rates         payroll.Rates
	clock         clock.Clock
}

func NewPayrollService(
	reportService report.ReportService,
	profileRepo employee.ProfileRepository,
	rates payroll.Rates,
	clk clock.Clock,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		reportService: reportService,
		profileRepo:   profileRepo,
		rates:         rates,
		clock:         clk,
	}
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.PayrollReport, error) {
	if _, err := authz.Require(ctx, user.PermissionReportsView); err != nil {
		return payroll.PayrollReport{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.PayrollReport{}, err
	}
	if err := s.rates.Validate(); err != nil {
		return payroll.PayrollReport{}, fmt.Errorf("invalid payroll rates: %w", err)
	}

	summary, err := s.reportService.Aggregate(ctx, period, req.EmployeeID)
	if err != nil {
		return payroll.PayrollReport{}, err
	}

	ids := make([]string, 0, len(summary.Employees))
	for _, rollup := range summary.Employees {
		ids = append(ids, rollup.EmployeeID)
	}
	// Unlike reports, pay cannot be derived without the base salary.
	profiles, err := s.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return payroll.PayrollReport{}, fmt.Errorf("failed to load employee profiles: %w", err)
	}

	result := payroll.PayrollReport{
		PeriodStart: period.Start.Format("2006-01-02"),
		PeriodEnd:   period.End.Format("2006-01-02"),
		GeneratedAt: s.clock.Now().UTC().Format(time.RFC3339),
		Lines:       make([]payroll.PayrollLine, 0, len(summary.Employees)),
		Skipped:     make([]payroll.SkippedEmployee, 0),
		TotalPay:    decimal.Zero,
	}

	for _, rollup := range summary.Employees {
		profile, ok := profiles[rollup.EmployeeID]
		if !ok {
			slog.Warn("Skipping payroll for employee", "employee_id", rollup.EmployeeID, "reason", skipNoProfile)
			result.Skipped = append(result.Skipped, payroll.SkippedEmployee{EmployeeID: rollup.EmployeeID, Reason: skipNoProfile})
			continue
		}
		if profile.BaseSalary == nil {
			slog.Warn("Skipping payroll for employee", "employee_id", rollup.EmployeeID, "reason", payroll.ErrMissingBaseSalary.Error())
			result.Skipped = append(result.Skipped, payroll.SkippedEmployee{EmployeeID: rollup.EmployeeID, Reason: payroll.ErrMissingBaseSalary.Error()})
			continue
		}

		line, err := payroll.Calculate(*profile.BaseSalary, rollup, s.rates)
		if err != nil {
			return payroll.PayrollReport{}, fmt.Errorf("failed to calculate payroll for %s: %w", rollup.EmployeeID, err)
		}
		result.Lines = append(result.Lines, line)
		result.TotalPay = result.TotalPay.Add(line.TotalPay)
	}

	missing, err := s.employedWithoutRecords(ctx, period, req.EmployeeID, summary.Employees)
	if err != nil {
		return payroll.PayrollReport{}, err
	}
	for _, id := range missing {
		slog.Warn("Skipping payroll for employee", "employee_id", id, "reason", skipNoRecords)
		result.Skipped = append(result.Skipped, payroll.SkippedEmployee{EmployeeID: id, Reason: skipNoRecords})
	}

	return result, nil
}

// employedWithoutRecords lists employees employed at the end of period that
// have no rollup, so they are reported instead of silently left out.
func (s *PayrollServiceImpl) employedWithoutRecords(ctx context.Context, period report.Period, employeeID *string, rollups []report.EmployeeRollup) ([]string, error) {
	employed, err := s.profileRepo.ListEmployedOn(ctx, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list employed profiles: %w", err)
	}

	seen := make(map[string]struct{}, len(rollups))
	for _, rollup := range rollups {
		seen[rollup.EmployeeID] = struct{}{}
	}

	missing := make([]string, 0)
	for _, p := range employed {
		if employeeID != nil && p.ID != *employeeID {
			continue
		}
		if _, ok := seen[p.ID]; !ok {
			missing = append(missing, p.ID)
		}
	}
	return missing, nil
}
