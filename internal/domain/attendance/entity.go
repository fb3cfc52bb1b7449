package attendance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

var validStatuses = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusAbsent),
	string(StatusHalfDay),
	string(StatusLeave),
	string(StatusHoliday),
}

func (s Status) IsValid() bool {
	for _, v := range validStatuses {
		if string(s) == v {
			return true
		}
	}
	return false
}

// GeoPoint is a captured device location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Attendance is one employee's record for one calendar date.
// Date is stored as midnight UTC of the local calendar day. BreakSeconds
// totals the breaks closed before the current lunch pair.
type Attendance struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	CheckIn          *time.Time
	CheckOut         *time.Time
	LunchStart       *time.Time
	LunchEnd         *time.Time
	BreakSeconds     int64
	Status           Status
	Notes            string
	LeaveType        *string
	CheckInLocation  *GeoPoint
	CheckOutLocation *GeoPoint
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Snapshot is the correctable part of a record, as captured in the audit log.
type Snapshot struct {
	CheckIn          *time.Time `json:"check_in"`
	CheckOut         *time.Time `json:"check_out"`
	LunchStart       *time.Time `json:"lunch_start"`
	LunchEnd         *time.Time `json:"lunch_end"`
	BreakSeconds     int64      `json:"break_seconds"`
	Status           Status     `json:"status"`
	Notes            string     `json:"notes"`
	LeaveType        *string    `json:"leave_type"`
	CheckInLocation  *GeoPoint  `json:"check_in_location"`
	CheckOutLocation *GeoPoint  `json:"check_out_location"`
}

// Snapshot copies the correctable fields of a.
func (a Attendance) Snapshot() Snapshot {
	return Snapshot{
		CheckIn:          copyTime(a.CheckIn),
		CheckOut:         copyTime(a.CheckOut),
		LunchStart:       copyTime(a.LunchStart),
		LunchEnd:         copyTime(a.LunchEnd),
		BreakSeconds:     a.BreakSeconds,
		Status:           a.Status,
		Notes:            a.Notes,
		LeaveType:        copyString(a.LeaveType),
		CheckInLocation:  copyPoint(a.CheckInLocation),
		CheckOutLocation: copyPoint(a.CheckOutLocation),
	}
}

// Restore overwrites the correctable fields of a with s.
func (a *Attendance) Restore(s Snapshot) {
	a.CheckIn = copyTime(s.CheckIn)
	a.CheckOut = copyTime(s.CheckOut)
	a.LunchStart = copyTime(s.LunchStart)
	a.LunchEnd = copyTime(s.LunchEnd)
	a.BreakSeconds = s.BreakSeconds
	a.Status = s.Status
	a.Notes = s.Notes
	a.LeaveType = copyString(s.LeaveType)
	a.CheckInLocation = copyPoint(s.CheckInLocation)
	a.CheckOutLocation = copyPoint(s.CheckOutLocation)
}

// Clone returns a deep copy of a.
func (a Attendance) Clone() Attendance {
	c := a
	c.Restore(a.Snapshot())
	return c
}

// Value implements driver.Valuer for JSONB storage
func (s Snapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *Snapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan Snapshot: invalid type")
	}
}

// DateOf returns the calendar day of t in loc, normalised to midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyPoint(p *GeoPoint) *GeoPoint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
