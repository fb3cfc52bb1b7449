package adjustment

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
)

// Adjustment is an immutable audit entry for one correction of an attendance record.
type Adjustment struct {
	ID           string
	AttendanceID string
	AdjustedBy   string
	Reason       string
	PreviousData attendance.Snapshot
	NewData      attendance.Snapshot
	CreatedAt    time.Time
}

// Changes lists the fields altered by the adjustment.
func (a Adjustment) Changes() []FieldChange {
	return Diff(a.PreviousData, a.NewData)
}
