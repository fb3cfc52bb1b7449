package attendance

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Date      string   `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Notes     *string  `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors
	validateDateField(&errs, "date", r.Date)
	validateLocation(&errs, r.Latitude, r.Longitude)
	return errs.Err()
}

func (r CheckInRequest) Location() *GeoPoint {
	return toGeoPoint(r.Latitude, r.Longitude)
}

type CheckOutRequest struct {
	Date      string   `json:"date,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors
	validateDateField(&errs, "date", r.Date)
	validateLocation(&errs, r.Latitude, r.Longitude)
	return errs.Err()
}

func (r CheckOutRequest) Location() *GeoPoint {
	return toGeoPoint(r.Latitude, r.Longitude)
}

type BreakRequest struct {
	Date string `json:"date,omitempty"`
}

func (r *BreakRequest) Validate() error {
	var errs validator.ValidationErrors
	validateDateField(&errs, "date", r.Date)
	return errs.Err()
}

type AttendanceResponse struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	Date             string    `json:"date"`
	CheckIn          *string   `json:"check_in,omitempty"`
	CheckOut         *string   `json:"check_out,omitempty"`
	LunchStart       *string   `json:"lunch_start,omitempty"`
	LunchEnd         *string   `json:"lunch_end,omitempty"`
	Status           string    `json:"status"`
	State            string    `json:"state"`
	Notes            string    `json:"notes,omitempty"`
	LeaveType        *string   `json:"leave_type,omitempty"`
	CheckInLocation  *GeoPoint `json:"check_in_location,omitempty"`
	CheckOutLocation *GeoPoint `json:"check_out_location,omitempty"`
	BreakMinutes     float64   `json:"break_minutes"`
	WorkingHours     float64   `json:"working_hours"`
	OvertimeHours    float64   `json:"overtime_hours"`
	IsLate           bool      `json:"is_late"`
	Version          int       `json:"version"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

// TodayResponse is the status panel for the calling employee.
type TodayResponse struct {
	Date       string              `json:"date"`
	State      string              `json:"state"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePaging(&errs, &f.Page, &f.Limit)

	if f.Status != nil && !validator.IsInSlice(*f.Status, validStatuses) {
		errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}
	validateRange(&errs, f.StartDate, f.EndDate)

	return errs.Err()
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	validatePaging(&errs, &f.Page, &f.Limit)
	validateRange(&errs, f.StartDate, f.EndDate)
	return errs.Err()
}

// Query is the resolved form of a filter handed to the repository.
type Query struct {
	EmployeeID *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *Status
	Limit      int
	Offset     int
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ToResponse renders a with derived hours at now.
func ToResponse(a Attendance, policy Policy, now time.Time) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		Date:             a.Date.Format("2006-01-02"),
		CheckIn:          formatTime(a.CheckIn),
		CheckOut:         formatTime(a.CheckOut),
		LunchStart:       formatTime(a.LunchStart),
		LunchEnd:         formatTime(a.LunchEnd),
		Status:           string(a.Status),
		State:            string(a.State()),
		Notes:            a.Notes,
		LeaveType:        a.LeaveType,
		CheckInLocation:  a.CheckInLocation,
		CheckOutLocation: a.CheckOutLocation,
		BreakMinutes:     roundHours(a.BreakDuration(now).Minutes()),
		WorkingHours:     roundHours(WorkingHours(a, now)),
		OvertimeHours:    roundHours(policy.OvertimeHours(a, now)),
		Version:          a.Version,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CheckIn != nil {
		resp.IsLate = policy.IsLate(*a.CheckIn)
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func toGeoPoint(lat, lng *float64) *GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &GeoPoint{Latitude: *lat, Longitude: *lng}
}

func validateDateField(errs *validator.ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, ok := validator.IsValidDate(value); !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
	}
}

func validateLocation(errs *validator.ValidationErrors, lat, lng *float64) {
	if (lat == nil) != (lng == nil) {
		errs.Add("latitude", "latitude and longitude must be provided together")
		return
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if lng != nil && !validator.IsValidLongitude(*lng) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
}

func validatePaging(errs *validator.ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1 // Default page
	}
	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}

func validateRange(errs *validator.ValidationErrors, start, end *string) {
	var startDate, endDate time.Time
	var startOK, endOK bool
	if start != nil && *start != "" {
		if startDate, startOK = validator.IsValidDate(*start); !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if end != nil && *end != "" {
		if endDate, endOK = validator.IsValidDate(*end); !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}

// ParseOptionalDate parses a YYYY-MM-DD pointer, returning nil when empty.
func ParseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &t
}
