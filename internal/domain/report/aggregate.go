package report

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
)

// Aggregate buckets records by date and by employee in a single pass.
// Employees missing from profiles are still counted under department "N/A".
// Hours of open records are measured up to now and are not rounded.
func Aggregate(records []attendance.Attendance, profiles map[string]employee.Profile, policy attendance.Policy, now time.Time) Summary {
	byDate := make(map[string]*DailySummary)
	byEmployee := make(map[string]*EmployeeRollup)

	for _, rec := range records {
		dateKey := rec.Date.Format("2006-01-02")
		day, ok := byDate[dateKey]
		if !ok {
			day = &DailySummary{Date: dateKey}
			byDate[dateKey] = day
		}

		roll, ok := byEmployee[rec.EmployeeID]
		if !ok {
			roll = &EmployeeRollup{EmployeeID: rec.EmployeeID, Department: employee.UnknownDepartment}
			if p, found := profiles[rec.EmployeeID]; found {
				roll.FullName = p.FullName
				if p.Department != "" {
					roll.Department = p.Department
				}
			}
			byEmployee[rec.EmployeeID] = roll
		}

		day.Total++
		switch rec.Status {
		case attendance.StatusPresent:
			day.Present++
			roll.PresentDays++
		case attendance.StatusLate:
			day.Late++
			roll.LateDays++
		case attendance.StatusAbsent:
			day.Absent++
			roll.AbsentDays++
		case attendance.StatusHalfDay:
			day.HalfDay++
			roll.HalfDays++
		case attendance.StatusLeave:
			day.Leave++
			roll.LeaveDays++
			if rec.LeaveType != nil && leave.Type(*rec.LeaveType) == leave.TypeUnpaid {
				roll.UnpaidLeaveDays++
			}
		case attendance.StatusHoliday:
			day.Holiday++
			roll.HolidayDays++
		}

		roll.WorkedHours += attendance.WorkingHours(rec, now)
		roll.OvertimeHours += policy.OvertimeHours(rec, now)
	}

	summary := Summary{
		Daily:     make([]DailySummary, 0, len(byDate)),
		Employees: make([]EmployeeRollup, 0, len(byEmployee)),
	}
	for _, d := range byDate {
		summary.Daily = append(summary.Daily, *d)
	}
	for _, r := range byEmployee {
		summary.Employees = append(summary.Employees, *r)
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Date < summary.Daily[j].Date })
	sort.Slice(summary.Employees, func(i, j int) bool { return summary.Employees[i].EmployeeID < summary.Employees[j].EmployeeID })

	return summary
}

// Rounded returns a copy of s with hours rounded to two places for display.
func (s Summary) Rounded() Summary {
	employees := make([]EmployeeRollup, len(s.Employees))
	for i, r := range s.Employees {
		r.WorkedHours = round2(r.WorkedHours)
		r.OvertimeHours = round2(r.OvertimeHours)
		employees[i] = r
	}
	return Summary{Daily: s.Daily, Employees: employees}
}

// EmployeeIDs lists the distinct employees referenced by records.
func EmployeeIDs(records []attendance.Attendance) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0)
	for _, rec := range records {
		if _, ok := seen[rec.EmployeeID]; ok {
			continue
		}
		seen[rec.EmployeeID] = struct{}{}
		ids = append(ids, rec.EmployeeID)
	}
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
