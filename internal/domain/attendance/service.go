package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's record for the calling employee
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	StartLunchBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)
	EndLunchBreak(ctx context.Context, req BreakRequest) (AttendanceResponse, error)

	// CheckOut closes the record, ending any open lunch break
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetToday returns the calling employee's record and state for today
	GetToday(ctx context.Context) (TodayResponse, error)

	// GetMyAttendance retrieves attendance records for authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin/manager)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
}
