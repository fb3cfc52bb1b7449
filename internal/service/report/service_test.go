package report

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedDay(t *testing.T, repo attendance.AttendanceRepository, employeeID string, d, inHour, outHour int) {
	t.Helper()
	in := date(d).Add(time.Duration(inHour) * time.Hour)
	out := date(d).Add(time.Duration(outHour) * time.Hour)
	rec, err := repo.UpsertCheckIn(context.Background(), attendance.Attendance{
		EmployeeID: employeeID,
		Date:       date(d),
		CheckIn:    &in,
		Status:     attendance.DefaultPolicy().StatusFor(in),
	})
	require.NoError(t, err)
	rec.CheckOut = &out
	_, err = repo.Update(context.Background(), rec)
	require.NoError(t, err)
}

func newService(t *testing.T) (report.ReportService, attendance.AttendanceRepository, *memory.Store) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore(clk)
	repo := memory.NewAttendanceRepository(store)
	svc := NewReportService(repo, memory.NewProfileRepository(store), attendance.DefaultPolicy(), clk)
	return svc, repo, store
}

func asManager() context.Context {
	return user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "m1", Role: user.RoleManager})
}

func TestReportService_Summarize(t *testing.T) {
	svc, repo, store := newService(t)
	store.PutProfile(employee.Profile{ID: "e1", FullName: "Ayu Lestari", Department: "Engineering", EmploymentStatus: employee.EmploymentStatusActive})

	seedDay(t, repo, "e1", 4, 9, 18)  // present, 9h => 1h overtime
	seedDay(t, repo, "e1", 5, 10, 18) // late
	seedDay(t, repo, "e2", 4, 8, 16)  // no profile
	_, err := repo.Create(context.Background(), attendance.Attendance{EmployeeID: "e2", Date: date(5), Status: attendance.StatusAbsent})
	require.NoError(t, err)
	seedDay(t, repo, "e1", 20, 9, 17) // outside the range

	resp, err := svc.Summarize(asManager(), report.SummaryRequest{StartDate: "2024-03-01", EndDate: "2024-03-10"})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", resp.PeriodStart)
	assert.Equal(t, "2024-03-10", resp.PeriodEnd)
	require.Len(t, resp.Daily, 2)
	assert.Equal(t, report.DailySummary{Date: "2024-03-04", Present: 2, Total: 2}, resp.Daily[0])
	assert.Equal(t, report.DailySummary{Date: "2024-03-05", Late: 1, Absent: 1, Total: 2}, resp.Daily[1])

	require.Len(t, resp.Employees, 2)
	e1 := resp.Employees[0]
	assert.Equal(t, "Ayu Lestari", e1.FullName)
	assert.Equal(t, 1, e1.PresentDays)
	assert.Equal(t, 1, e1.LateDays)
	assert.Equal(t, 1.0, e1.OvertimeHours)
	assert.Equal(t, 17.0, e1.WorkedHours)

	e2 := resp.Employees[1]
	assert.Equal(t, employee.UnknownDepartment, e2.Department)
	assert.Equal(t, 1, e2.PresentDays)
	assert.Equal(t, 1, e2.AbsentDays)
}

func TestReportService_EmployeeFilter(t *testing.T) {
	svc, repo, _ := newService(t)
	seedDay(t, repo, "e1", 4, 9, 17)
	seedDay(t, repo, "e2", 4, 9, 17)

	emp := "e2"
	resp, err := svc.Summarize(asManager(), report.SummaryRequest{StartDate: "2024-03-04", EndDate: "2024-03-04", EmployeeID: &emp})
	require.NoError(t, err)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "e2", resp.Employees[0].EmployeeID)
}

func TestReportService_Errors(t *testing.T) {
	svc, _, _ := newService(t)

	employeeCtx := user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "e1", Role: user.RoleEmployee})
	_, err := svc.Summarize(employeeCtx, report.SummaryRequest{StartDate: "2024-03-01", EndDate: "2024-03-10"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Summarize(asManager(), report.SummaryRequest{StartDate: "2024-03-10", EndDate: "2024-03-01"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	resp, err := svc.Summarize(asManager(), report.SummaryRequest{StartDate: "2024-03-01", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Empty(t, resp.Daily)
	assert.Empty(t, resp.Employees)
}
