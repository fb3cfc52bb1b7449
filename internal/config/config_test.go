package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, 1, cfg.Scheduler.LookbackDays)
	assert.Equal(t, "hris", cfg.Events.SubjectPrefix)

	policy, err := cfg.AttendancePolicy()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, policy.Location)
	assert.Equal(t, 9, policy.LateAfterHour)
	assert.Equal(t, 8.0, policy.StandardHours)
	assert.Equal(t, 18, policy.EndOfDayHour)
	assert.Len(t, policy.WorkWeekdays, 6)
	assert.NotContains(t, policy.WorkWeekdays, time.Sunday)

	rates, err := cfg.PayrollRates()
	require.NoError(t, err)
	assert.Equal(t, 26, rates.WorkingDaysInPeriod)
	assert.True(t, decimal.NewFromInt(200).Equal(rates.OvertimeRatePerHour))
	assert.True(t, rates.DeductUnpaidLeave)
}

func TestLoad_PolicyFileOverlay(t *testing.T) {
	setRequired(t)
	t.Setenv("LATE_AFTER_HOUR", "10")

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone: Asia/Jakarta
standard_hours: 7.5
work_weekdays: [mon, tue, wed, thu, fri]
payroll:
  working_days_in_period: 22
  overtime_rate_per_hour: "150.50"
`), 0o600))
	t.Setenv("POLICY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	policy, err := cfg.AttendancePolicy()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", policy.Location.String())
	assert.Equal(t, 10, policy.LateAfterHour, "env value kept when the file omits the key")
	assert.Equal(t, 7.5, policy.StandardHours)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, policy.WorkWeekdays)

	rates, err := cfg.PayrollRates()
	require.NoError(t, err)
	assert.Equal(t, 22, rates.WorkingDaysInPeriod)
	assert.Equal(t, "150.5", rates.OvertimeRatePerHour.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET_KEY": ""}},
		{name: "postgres without password", env: map[string]string{"STORAGE_DRIVER": StorageDriverPostgres, "DB_PASSWORD": ""}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{name: "bad weekday", env: map[string]string{"WORK_WEEKDAYS": "monday,funday"}},
		{name: "zero working days", env: map[string]string{"PAYROLL_WORKING_DAYS": "0"}},
		{name: "bad overtime rate", env: map[string]string{"PAYROLL_OVERTIME_RATE": "lots"}},
		{name: "bad interval", env: map[string]string{"SCHEDULER_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
