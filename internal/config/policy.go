package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile mirrors PolicyConfig with optional fields so that a file only
// overrides the keys it sets.
type policyFile struct {
	Timezone      *string  `yaml:"timezone"`
	LateAfterHour *int     `yaml:"late_after_hour"`
	StandardHours *float64 `yaml:"standard_hours"`
	EndOfDayHour  *int     `yaml:"end_of_day_hour"`
	WorkWeekdays  []string `yaml:"work_weekdays"`

	Payroll struct {
		WorkingDaysInPeriod *int    `yaml:"working_days_in_period"`
		OvertimeRatePerHour *string `yaml:"overtime_rate_per_hour"`
		DeductUnpaidLeave   *bool   `yaml:"deduct_unpaid_leave"`
	} `yaml:"payroll"`
}

func (p *PolicyConfig) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}
	return p.overlay(data)
}

func (p *PolicyConfig) overlay(data []byte) error {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	if f.Timezone != nil {
		p.Timezone = *f.Timezone
	}
	if f.LateAfterHour != nil {
		p.LateAfterHour = *f.LateAfterHour
	}
	if f.StandardHours != nil {
		p.StandardHours = *f.StandardHours
	}
	if f.EndOfDayHour != nil {
		p.EndOfDayHour = *f.EndOfDayHour
	}
	if len(f.WorkWeekdays) > 0 {
		p.WorkWeekdays = f.WorkWeekdays
	}
	if f.Payroll.WorkingDaysInPeriod != nil {
		p.WorkingDaysInPeriod = *f.Payroll.WorkingDaysInPeriod
	}
	if f.Payroll.OvertimeRatePerHour != nil {
		p.OvertimeRatePerHour = *f.Payroll.OvertimeRatePerHour
	}
	if f.Payroll.DeductUnpaidLeave != nil {
		p.DeductUnpaidLeave = *f.Payroll.DeductUnpaidLeave
	}
	return nil
}
