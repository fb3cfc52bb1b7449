package leave

import "context"

type LeaveService interface {
	// Apply files a pending request for the calling employee
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)

	// Approve approves a pending request and materialises leave days
	Approve(ctx context.Context, id string) (LeaveResponse, error)

	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveResponse, error)

	Get(ctx context.Context, id string) (LeaveResponse, error)
	GetMyRequests(ctx context.Context, filter MyLeaveFilter) (ListLeaveResponse, error)
	List(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
}
