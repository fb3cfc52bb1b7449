package leave

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound         = apperror.New(apperror.ErrNotFound, "leave request not found")
	ErrLeaveRequestAlreadyProcessed = apperror.New(apperror.ErrInvalidState, "leave request already processed")
	ErrOverlappingLeave             = apperror.New(apperror.ErrInvalidState, "leave request overlaps an existing request")
	ErrConcurrentUpdate             = apperror.New(apperror.ErrInvalidState, "leave request was modified concurrently")
	ErrSelfApproval                 = apperror.New(apperror.ErrForbidden, "cannot review your own leave request")
)
