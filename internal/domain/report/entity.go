package report

// DailySummary counts records per status for one date.
type DailySummary struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
	Absent  int    `json:"absent"`
	Leave   int    `json:"leave"`
	HalfDay int    `json:"half_day"`
	Holiday int    `json:"holiday"`
	Total   int    `json:"total"`
}

// EmployeeRollup aggregates one employee's records over a date range.
type EmployeeRollup struct {
	EmployeeID      string  `json:"employee_id"`
	FullName        string  `json:"full_name"`
	Department      string  `json:"department"`
	PresentDays     int     `json:"present_days"`
	LateDays        int     `json:"late_days"`
	AbsentDays      int     `json:"absent_days"`
	HalfDays        int     `json:"half_days"`
	LeaveDays       int     `json:"leave_days"`
	UnpaidLeaveDays int     `json:"unpaid_leave_days"`
	HolidayDays     int     `json:"holiday_days"`
	WorkedHours     float64 `json:"worked_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
}

// Summary is the result of one aggregation pass.
type Summary struct {
	Daily     []DailySummary
	Employees []EmployeeRollup
}
