package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesYAML = `
employees:
  - id: e1
    employee_code: EMP-001
    full_name: Ana Putri
    department: Engineering
    base_salary: "5200000"
    hire_date: "2023-01-02"
  - id: e2
    full_name: Budi Santoso
    employment_status: inactive
    resignation_date: "2024-02-29"
`

func TestParseProfiles(t *testing.T) {
	profiles, err := parseProfiles([]byte(profilesYAML))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "e1", profiles[0].ID)
	assert.Equal(t, employee.EmploymentStatusActive, profiles[0].EmploymentStatus)
	require.NotNil(t, profiles[0].BaseSalary)
	assert.Equal(t, "5200000", profiles[0].BaseSalary.String())
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), profiles[0].HireDate)

	assert.Equal(t, employee.EmploymentStatusInactive, profiles[1].EmploymentStatus)
	assert.Nil(t, profiles[1].BaseSalary)
	require.NotNil(t, profiles[1].ResignationDate)
}

func TestParseProfiles_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing id", data: "employees:\n  - full_name: x\n"},
		{name: "bad salary", data: "employees:\n  - id: e1\n    base_salary: lots\n"},
		{name: "bad hire date", data: "employees:\n  - id: e1\n    hire_date: 02/01/2023\n"},
		{name: "not yaml", data: "employees: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProfiles([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func newMemoryApp(t *testing.T, clk clock.Clock) *App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profilesYAML), 0o600))

	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("PROFILES_FILE", path)
	t.Setenv("WORK_WEEKDAYS", "mon,tue,wed,thu,fri")
	t.Setenv("NATS_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, clk)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_MemoryDriver(t *testing.T) {
	// Tuesday 2024-03-05, so Monday is the lookback day.
	clk := clock.NewFake(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	a := newMemoryApp(t, clk)

	assert.Equal(t, []string{cron.JobCloseStaleSessions, cron.JobMarkAbsent}, a.Scheduler.Jobs())

	ctx := user.SystemContext(context.Background())
	require.NoError(t, a.Scheduler.RunOnce(ctx))

	result, err := a.Payroll.Generate(ctx, payroll.GenerateRequest{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, result.Lines, 1, "only the active employee is marked absent")
	assert.Equal(t, "e1", result.Lines[0].EmployeeID)
	assert.Equal(t, 1, result.Lines[0].AbsentDays)
}

func TestApp_Router(t *testing.T) {
	a := newMemoryApp(t, clock.NewFake(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)))
	router := a.Router(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, _, err := a.JWT.GenerateAccessToken("e1", user.RoleEmployee)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
