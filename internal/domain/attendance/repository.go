package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// UpsertCheckIn inserts a checked-in record, or fills check-in on an
	// existing record for the same employee and date whose check-in is empty.
	// Returns ErrAlreadyCheckedIn when the date already has a check-in.
	UpsertCheckIn(ctx context.Context, attendance Attendance) (Attendance, error)

	// Create inserts a record without check-in (absence, leave, holiday).
	// Returns ErrRecordExists when the employee already has a record for the date.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByIDForUpdate locks the record for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Update writes the record if its version still matches and bumps it.
	// Returns ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	List(ctx context.Context, query Query) ([]Attendance, int64, error)

	// ListRange returns every record dated within [start, end], ordered by date then employee.
	ListRange(ctx context.Context, start, end time.Time, employeeID *string) ([]Attendance, error)

	// ListOpenBefore returns records dated before date that have a check-in but no check-out.
	ListOpenBefore(ctx context.Context, date time.Time) ([]Attendance, error)
}
