package adjustment

import "context"

// AdjustmentRepository is append-only.
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment Adjustment) (Adjustment, error)

	// ListByAttendance returns entries ordered by created_at, then id.
	ListByAttendance(ctx context.Context, attendanceID string) ([]Adjustment, error)
}
