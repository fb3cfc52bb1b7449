package app

import (
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type profileEntry struct {
	ID               string  `yaml:"id"`
	EmployeeCode     string  `yaml:"employee_code"`
	FullName         string  `yaml:"full_name"`
	Department       string  `yaml:"department"`
	EmploymentStatus string  `yaml:"employment_status"`
	BaseSalary       *string `yaml:"base_salary"`
	HireDate         string  `yaml:"hire_date"`
	ResignationDate  string  `yaml:"resignation_date"`
}

type profilesFile struct {
	Employees []profileEntry `yaml:"employees"`
}

// seedProfiles loads employee profiles from a YAML file into the memory store.
func seedProfiles(store *memory.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read profiles file: %w", err)
	}

	profiles, err := parseProfiles(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse profiles file %s: %w", path, err)
	}
	for _, p := range profiles {
		store.PutProfile(p)
	}
	return len(profiles), nil
}

func parseProfiles(data []byte) ([]employee.Profile, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	profiles := make([]employee.Profile, 0, len(file.Employees))
	for i, e := range file.Employees {
		if e.ID == "" {
			return nil, fmt.Errorf("employees[%d]: id is required", i)
		}

		p := employee.Profile{
			ID:               e.ID,
			EmployeeCode:     e.EmployeeCode,
			FullName:         e.FullName,
			Department:       e.Department,
			EmploymentStatus: employee.EmploymentStatus(e.EmploymentStatus),
		}
		if p.EmploymentStatus == "" {
			p.EmploymentStatus = employee.EmploymentStatusActive
		}

		if e.BaseSalary != nil {
			salary, err := decimal.NewFromString(*e.BaseSalary)
			if err != nil {
				return nil, fmt.Errorf("employees[%d]: invalid base_salary: %w", i, err)
			}
			p.BaseSalary = &salary
		}

		if e.HireDate != "" {
			hired, err := time.Parse(time.DateOnly, e.HireDate)
			if err != nil {
				return nil, fmt.Errorf("employees[%d]: invalid hire_date: %w", i, err)
			}
			p.HireDate = hired
		}
		if e.ResignationDate != "" {
			resigned, err := time.Parse(time.DateOnly, e.ResignationDate)
			if err != nil {
				return nil, fmt.Errorf("employees[%d]: invalid resignation_date: %w", i, err)
			}
			p.ResignationDate = &resigned
		}

		profiles = append(profiles, p)
	}
	return profiles, nil
}
