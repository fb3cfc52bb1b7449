package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

type State string

const (
	StateNotCheckedIn State = "not_checked_in"
	StateCheckedIn    State = "checked_in"
	StateOnBreak      State = "on_break"
	StateCheckedOut   State = "checked_out"
)

// Policy holds the work-time rules applied to every record.
type Policy struct {
	Location *time.Location
	// A check-in whose local hour is greater than LateAfterHour is late.
	LateAfterHour int
	StandardHours float64
	WorkWeekdays  []time.Weekday
	// Stale open sessions are closed at this local hour of their own day.
	EndOfDayHour int
}

func DefaultPolicy() Policy {
	return Policy{
		Location:      time.UTC,
		LateAfterHour: 9,
		StandardHours: 8,
		WorkWeekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		EndOfDayHour: 18,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Today returns the local calendar date at now.
func (p Policy) Today(now time.Time) time.Time {
	return DateOf(now, p.location())
}

// IsWorkday reports whether date falls on a configured work weekday.
func (p Policy) IsWorkday(date time.Time) bool {
	for _, wd := range p.WorkWeekdays {
		if date.Weekday() == wd {
			return true
		}
	}
	return false
}

// IsLate reports whether checkIn happened after the late threshold hour.
// The boundary hour itself is on time: 09:59:59 is not late with a threshold of 9.
func (p Policy) IsLate(checkIn time.Time) bool {
	return checkIn.In(p.location()).Hour() > p.LateAfterHour
}

// StatusFor returns the status assigned at check-in.
func (p Policy) StatusFor(checkIn time.Time) Status {
	if p.IsLate(checkIn) {
		return StatusLate
	}
	return StatusPresent
}

// EndOfDay returns EndOfDayHour on the local calendar day of date.
func (p Policy) EndOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), p.EndOfDayHour, 0, 0, 0, p.location())
}

// OvertimeHours returns the hours worked beyond the standard day.
func (p Policy) OvertimeHours(a Attendance, now time.Time) float64 {
	return math.Max(0, WorkingHours(a, now)-p.StandardHours)
}

// State derives the state machine position from the record fields.
func (a Attendance) State() State {
	switch {
	case a.CheckIn == nil:
		return StateNotCheckedIn
	case a.CheckOut != nil:
		return StateCheckedOut
	case a.LunchStart != nil && a.LunchEnd == nil:
		return StateOnBreak
	default:
		return StateCheckedIn
	}
}

// WorkingHours is the checked-in duration minus every break: the earlier
// closed breaks in BreakSeconds plus the current lunch pair. Open intervals
// run until now. The result is never negative.
func WorkingHours(a Attendance, now time.Time) float64 {
	if a.CheckIn == nil {
		return 0
	}
	end := now
	if a.CheckOut != nil {
		end = *a.CheckOut
	}
	worked := end.Sub(*a.CheckIn) - a.PriorBreaks()

	if a.LunchStart != nil {
		breakStart := *a.LunchStart
		if breakStart.Before(*a.CheckIn) {
			breakStart = *a.CheckIn
		}
		breakEnd := end
		if a.LunchEnd != nil && a.LunchEnd.Before(end) {
			breakEnd = *a.LunchEnd
		}
		if breakEnd.After(breakStart) {
			worked -= breakEnd.Sub(breakStart)
		}
	}

	if worked < 0 {
		return 0
	}
	return worked.Hours()
}

// PriorBreaks returns the closed breaks taken before the current lunch pair.
func (a Attendance) PriorBreaks() time.Duration {
	return time.Duration(a.BreakSeconds) * time.Second
}

// BreakDuration returns the total break time so far, with an open break
// running until now.
func (a Attendance) BreakDuration(now time.Time) time.Duration {
	total := a.PriorBreaks()
	if a.LunchStart != nil {
		end := now
		if a.LunchEnd != nil {
			end = *a.LunchEnd
		} else if a.CheckOut != nil {
			end = *a.CheckOut
		}
		if end.After(*a.LunchStart) {
			total += end.Sub(*a.LunchStart)
		}
	}
	return total
}

// StartBreak moves CheckedIn to OnBreak. A closed earlier break is folded
// into BreakSeconds before the lunch pair is reused.
func (a *Attendance) StartBreak(at time.Time) error {
	switch a.State() {
	case StateNotCheckedIn:
		return ErrNotCheckedIn
	case StateCheckedOut:
		return ErrAlreadyCheckedOut
	case StateOnBreak:
		return ErrAlreadyOnBreak
	}
	floor := *a.CheckIn
	if a.LunchStart != nil && a.LunchEnd != nil {
		if closed := a.LunchEnd.Sub(*a.LunchStart); closed > 0 {
			a.BreakSeconds += int64(closed / time.Second)
		}
		floor = *a.LunchEnd
		a.LunchEnd = nil
	}
	at = notBefore(at, floor)
	a.LunchStart = &at
	return nil
}

// EndBreak moves OnBreak back to CheckedIn.
func (a *Attendance) EndBreak(at time.Time) error {
	switch a.State() {
	case StateNotCheckedIn:
		return ErrNotCheckedIn
	case StateCheckedOut:
		return ErrAlreadyCheckedOut
	case StateCheckedIn:
		return ErrNotOnBreak
	}
	at = notBefore(at, *a.LunchStart)
	a.LunchEnd = &at
	return nil
}

// Close moves CheckedIn or OnBreak to CheckedOut. An open break ends at the
// check-out instant.
func (a *Attendance) Close(at time.Time, location *GeoPoint) error {
	switch a.State() {
	case StateNotCheckedIn:
		return ErrNotCheckedIn
	case StateCheckedOut:
		return ErrAlreadyCheckedOut
	case StateOnBreak:
		at = notBefore(at, *a.LunchStart)
		end := at
		a.LunchEnd = &end
	}
	at = notBefore(at, *a.CheckIn)
	a.CheckOut = &at
	a.CheckOutLocation = copyPoint(location)
	return nil
}

// Validate checks the ordering invariants of a snapshot. Open intervals are
// bounded by now.
func (s Snapshot) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if !s.Status.IsValid() {
		errs.Add("status", "status must be one of: present, late, absent, half-day, leave, holiday")
	}

	upper := now
	if s.CheckOut != nil {
		upper = *s.CheckOut
	}

	if s.CheckOut != nil {
		if s.CheckIn == nil {
			errs.Add("check_out", "check_out requires check_in")
		} else if s.CheckOut.Before(*s.CheckIn) {
			errs.Add("check_out", "check_out must not be before check_in")
		}
	}

	if s.LunchStart != nil {
		switch {
		case s.CheckIn == nil:
			errs.Add("lunch_start", "lunch_start requires check_in")
		case s.LunchStart.Before(*s.CheckIn):
			errs.Add("lunch_start", "lunch_start must not be before check_in")
		case s.LunchStart.After(upper):
			errs.Add("lunch_start", "lunch_start must not be after check_out")
		}
	}

	if s.LunchEnd != nil {
		switch {
		case s.LunchStart == nil:
			errs.Add("lunch_end", "lunch_end requires lunch_start")
		case s.LunchEnd.Before(*s.LunchStart):
			errs.Add("lunch_end", "lunch_end must not be before lunch_start")
		case s.LunchEnd.After(upper):
			errs.Add("lunch_end", "lunch_end must not be after check_out")
		}
	}

	if s.BreakSeconds < 0 {
		errs.Add("break_seconds", "break_seconds must not be negative")
	}

	if s.CheckInLocation != nil && (!validator.IsValidLatitude(s.CheckInLocation.Latitude) || !validator.IsValidLongitude(s.CheckInLocation.Longitude)) {
		errs.Add("check_in_location", "coordinates out of range")
	}
	if s.CheckOutLocation != nil && (!validator.IsValidLatitude(s.CheckOutLocation.Latitude) || !validator.IsValidLongitude(s.CheckOutLocation.Longitude)) {
		errs.Add("check_out_location", "coordinates out of range")
	}

	return errs.Err()
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
