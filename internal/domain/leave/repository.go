package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// GetByIDForUpdate locks the request for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)

	// Update writes the request if its version still matches and bumps it.
	Update(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	List(ctx context.Context, query Query) ([]LeaveRequest, int64, error)

	// HasOverlap reports whether the employee has a pending or approved
	// request sharing a day with [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
}
