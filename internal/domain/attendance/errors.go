package attendance

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

// Attendance domain errors
var (
	// State machine errors
	ErrAlreadyCheckedIn  = apperror.New(apperror.ErrInvalidState, "already checked in for this date")
	ErrNotCheckedIn      = apperror.New(apperror.ErrInvalidState, "not checked in yet")
	ErrAlreadyCheckedOut = apperror.New(apperror.ErrInvalidState, "already checked out")
	ErrAlreadyOnBreak    = apperror.New(apperror.ErrInvalidState, "lunch break already in progress")
	ErrNotOnBreak        = apperror.New(apperror.ErrInvalidState, "no lunch break in progress")
	ErrOnLeave           = apperror.New(apperror.ErrInvalidState, "approved leave covers this date")

	// Storage errors
	ErrRecordExists       = apperror.New(apperror.ErrInvalidState, "attendance record already exists for this date")
	ErrConcurrentUpdate   = apperror.New(apperror.ErrInvalidState, "attendance record was modified concurrently")
	ErrAttendanceNotFound = apperror.New(apperror.ErrNotFound, "attendance record not found")
)
