package report

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

const maxRangeDays = 366

// ========================================
// ATTENDANCE SUMMARY
// ========================================

type SummaryRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *SummaryRequest) Validate() error {
	_, err := r.Period()
	return err
}

// Period parses and checks the requested range.
func (r SummaryRequest) Period() (Period, error) {
	return ParsePeriod(r.StartDate, r.EndDate)
}

// Period is an inclusive date range.
type Period struct {
	Start time.Time
	End   time.Time
}

func ParsePeriod(start, end string) (Period, error) {
	var errs validator.ValidationErrors
	var p Period
	var startOK, endOK bool

	if validator.IsEmpty(start) {
		errs.Add("start_date", "start_date is required")
	} else if p.Start, startOK = validator.IsValidDate(start); !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	if validator.IsEmpty(end) {
		errs.Add("end_date", "end_date is required")
	} else if p.End, endOK = validator.IsValidDate(end); !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}

	if startOK && endOK {
		if p.End.Before(p.Start) {
			errs.Add("end_date", ErrInvalidDateRange.Error())
		} else if p.End.Sub(p.Start) > maxRangeDays*24*time.Hour {
			errs.Add("end_date", ErrRangeTooLong.Error())
		}
	}

	if err := errs.Err(); err != nil {
		return Period{}, err
	}
	return p, nil
}

type SummaryResponse struct {
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	GeneratedAt string           `json:"generated_at"`
	Daily       []DailySummary   `json:"daily"`
	Employees   []EmployeeRollup `json:"employees"`
}
