package adjustment

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

const (
	FieldCheckIn          = "check_in"
	FieldCheckOut         = "check_out"
	FieldLunchStart       = "lunch_start"
	FieldLunchEnd         = "lunch_end"
	FieldBreakSeconds     = "break_seconds"
	FieldNotes            = "notes"
	FieldLeaveType        = "leave_type"
	FieldCheckInLocation  = "check_in_location"
	FieldCheckOutLocation = "check_out_location"
)

var clearableFields = []string{
	FieldCheckIn,
	FieldCheckOut,
	FieldLunchStart,
	FieldLunchEnd,
	FieldBreakSeconds,
	FieldNotes,
	FieldLeaveType,
	FieldCheckInLocation,
	FieldCheckOutLocation,
}

// Patch lists the fields to overwrite. Nil fields are left untouched;
// Clear names fields to reset to empty.
type Patch struct {
	CheckIn          *time.Time           `json:"check_in,omitempty"`
	CheckOut         *time.Time           `json:"check_out,omitempty"`
	LunchStart       *time.Time           `json:"lunch_start,omitempty"`
	LunchEnd         *time.Time           `json:"lunch_end,omitempty"`
	BreakSeconds     *int64               `json:"break_seconds,omitempty"`
	Status           *attendance.Status   `json:"status,omitempty"`
	Notes            *string              `json:"notes,omitempty"`
	LeaveType        *string              `json:"leave_type,omitempty"`
	CheckInLocation  *attendance.GeoPoint `json:"check_in_location,omitempty"`
	CheckOutLocation *attendance.GeoPoint `json:"check_out_location,omitempty"`
	Clear            []string             `json:"clear,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.CheckIn == nil && p.CheckOut == nil && p.LunchStart == nil && p.LunchEnd == nil &&
		p.BreakSeconds == nil && p.Status == nil && p.Notes == nil && p.LeaveType == nil &&
		p.CheckInLocation == nil && p.CheckOutLocation == nil && len(p.Clear) == 0
}

func (p Patch) sets(field string) bool {
	switch field {
	case FieldCheckIn:
		return p.CheckIn != nil
	case FieldCheckOut:
		return p.CheckOut != nil
	case FieldLunchStart:
		return p.LunchStart != nil
	case FieldLunchEnd:
		return p.LunchEnd != nil
	case FieldBreakSeconds:
		return p.BreakSeconds != nil
	case FieldNotes:
		return p.Notes != nil
	case FieldLeaveType:
		return p.LeaveType != nil
	case FieldCheckInLocation:
		return p.CheckInLocation != nil
	case FieldCheckOutLocation:
		return p.CheckOutLocation != nil
	}
	return false
}

// Apply returns s with the patch applied. s is not modified.
func (p Patch) Apply(s attendance.Snapshot) attendance.Snapshot {
	var rec attendance.Attendance
	rec.Restore(s)
	out := rec.Snapshot()

	for _, field := range p.Clear {
		switch field {
		case FieldCheckIn:
			out.CheckIn = nil
		case FieldCheckOut:
			out.CheckOut = nil
		case FieldLunchStart:
			out.LunchStart = nil
		case FieldLunchEnd:
			out.LunchEnd = nil
		case FieldBreakSeconds:
			out.BreakSeconds = 0
		case FieldNotes:
			out.Notes = ""
		case FieldLeaveType:
			out.LeaveType = nil
		case FieldCheckInLocation:
			out.CheckInLocation = nil
		case FieldCheckOutLocation:
			out.CheckOutLocation = nil
		}
	}

	if p.CheckIn != nil {
		v := *p.CheckIn
		out.CheckIn = &v
	}
	if p.CheckOut != nil {
		v := *p.CheckOut
		out.CheckOut = &v
	}
	if p.LunchStart != nil {
		v := *p.LunchStart
		out.LunchStart = &v
	}
	if p.LunchEnd != nil {
		v := *p.LunchEnd
		out.LunchEnd = &v
	}
	if p.BreakSeconds != nil {
		out.BreakSeconds = *p.BreakSeconds
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.LeaveType != nil {
		v := *p.LeaveType
		out.LeaveType = &v
	}
	if p.CheckInLocation != nil {
		v := *p.CheckInLocation
		out.CheckInLocation = &v
	}
	if p.CheckOutLocation != nil {
		v := *p.CheckOutLocation
		out.CheckOutLocation = &v
	}
	return out
}

type RecordAdjustmentRequest struct {
	AttendanceID string `json:"-"`
	Reason       string `json:"reason"`
	Changes      Patch  `json:"changes"`
}

func (r *RecordAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs.Add("attendance_id", "attendance_id is required")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if r.Changes.IsEmpty() {
		errs.Add("changes", "at least one field must be changed")
	}
	for _, field := range r.Changes.Clear {
		if !validator.IsInSlice(field, clearableFields) {
			errs.Add("changes.clear", "unknown field '"+field+"'")
			continue
		}
		if r.Changes.sets(field) {
			errs.Add("changes.clear", "field '"+field+"' is both set and cleared")
		}
	}

	return errs.Err()
}

type AdjustmentResponse struct {
	ID           string              `json:"id"`
	AttendanceID string              `json:"attendance_id"`
	AdjustedBy   string              `json:"adjusted_by"`
	Reason       string              `json:"reason"`
	Changes      []FieldChange       `json:"changes"`
	PreviousData attendance.Snapshot `json:"previous_data"`
	NewData      attendance.Snapshot `json:"new_data"`
	CreatedAt    string              `json:"created_at"`
}

func ToResponse(a Adjustment) AdjustmentResponse {
	changes := a.Changes()
	if changes == nil {
		changes = []FieldChange{}
	}
	return AdjustmentResponse{
		ID:           a.ID,
		AttendanceID: a.AttendanceID,
		AdjustedBy:   a.AdjustedBy,
		Reason:       a.Reason,
		Changes:      changes,
		PreviousData: a.PreviousData,
		NewData:      a.NewData,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}
