package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/authz"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	profileRepo    employee.ProfileRepository
	policy         attendance.Policy
	clock          clock.Clock
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	profileRepo employee.ProfileRepository,
	policy attendance.Policy,
	clk clock.Clock,
) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		profileRepo:    profileRepo,
		policy:         policy,
		clock:          clk,
	}
}

// Summarize implements report.ReportService.
func (s *ReportServiceImpl) Summarize(ctx context.Context, req report.SummaryRequest) (report.SummaryResponse, error) {
	if _, err := authz.Require(ctx, user.PermissionReportsView); err != nil {
		return report.SummaryResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return report.SummaryResponse{}, err
	}

	summary, err := s.Aggregate(ctx, period, req.EmployeeID)
	if err != nil {
		return report.SummaryResponse{}, err
	}
	summary = summary.Rounded()

	return report.SummaryResponse{
		PeriodStart: period.Start.Format("2006-01-02"),
		PeriodEnd:   period.End.Format("2006-01-02"),
		GeneratedAt: s.clock.Now().UTC().Format(time.RFC3339),
		Daily:       summary.Daily,
		Employees:   summary.Employees,
	}, nil
}

// Aggregate implements report.ReportService.
func (s *ReportServiceImpl) Aggregate(ctx context.Context, period report.Period, employeeID *string) (report.Summary, error) {
	if _, err := authz.Require(ctx, user.PermissionReportsView); err != nil {
		return report.Summary{}, err
	}

	now := s.clock.Now()
	records, err := s.attendanceRepo.ListRange(ctx, period.Start, period.End, employeeID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("failed to list attendance range: %w", err)
	}

	// Missing profiles only cost names and departments, so a failed lookup
	// degrades the rollups instead of failing the report.
	profiles, err := s.profileRepo.GetByIDs(ctx, report.EmployeeIDs(records))
	if err != nil {
		slog.Warn("Failed to load employee profiles for report", "error", err)
		profiles = map[string]employee.Profile{}
	}

	return report.Aggregate(records, profiles, s.policy, now), nil
}
