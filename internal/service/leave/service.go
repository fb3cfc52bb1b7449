package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/authz"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/events"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/metrics"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	materializer *DayMaterializer
	publisher    events.Publisher
	clock        clock.Clock
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}
	start, end := req.Period()

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		overlap, err := s.LeaveRequestRepository.HasOverlap(ctx, caller.EmployeeID, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		created, err = s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
			EmployeeID: caller.EmployeeID,
			LeaveType:  leave.Type(req.LeaveType),
			StartDate:  start,
			EndDate:    end,
			Reason:     req.Reason,
			Status:     leave.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.publish(ctx, created, "", caller.EmployeeID, nil)
	return leave.ToResponse(created), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionLeaveApprove)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	var approved leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.getForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := request.Approve(caller.EmployeeID, s.clock.Now().UTC()); err != nil {
			return err
		}

		approved, err = s.LeaveRequestRepository.Update(ctx, request)
		if err != nil {
			if errors.Is(err, leave.ErrConcurrentUpdate) {
				return err
			}
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		return s.materializer.Materialize(ctx, approved, caller.EmployeeID)
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.publish(ctx, approved, leave.StatusPending, caller.EmployeeID, nil)
	return leave.ToResponse(approved), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionLeaveApprove)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var rejected leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.getForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := request.Reject(caller.EmployeeID, req.Reason, s.clock.Now().UTC()); err != nil {
			return err
		}

		rejected, err = s.LeaveRequestRepository.Update(ctx, request)
		if err != nil {
			if errors.Is(err, leave.ErrConcurrentUpdate) {
				return err
			}
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.publish(ctx, rejected, leave.StatusPending, caller.EmployeeID, &req.Reason)
	return leave.ToResponse(rejected), nil
}

func (s *LeaveServiceImpl) getForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	request, err := s.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

// publish hands the transition to the notification consumer. Delivery
// failures are logged; the transition has already been committed.
func (s *LeaveServiceImpl) publish(ctx context.Context, request leave.LeaveRequest, from leave.Status, actorID string, reason *string) {
	metrics.LeaveTransitions.WithLabelValues(string(request.Status)).Inc()

	ev := leave.TransitionEvent{
		LeaveID:    request.ID,
		EmployeeID: request.EmployeeID,
		LeaveType:  request.LeaveType,
		StartDate:  request.StartDate.Format("2006-01-02"),
		EndDate:    request.EndDate.Format("2006-01-02"),
		From:       from,
		To:         request.Status,
		ActorID:    actorID,
		Reason:     reason,
		OccurredAt: s.clock.Now().UTC(),
	}
	slog.Info("Leave request transitioned", "leave_id", ev.LeaveID, "employee_id", ev.EmployeeID, "from", ev.From, "to", ev.To, "actor_id", actorID)

	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.Event{
		Topic:      ev.Topic(),
		Key:        ev.EmployeeID,
		Payload:    ev,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		slog.Warn("Failed to publish leave transition", "leave_id", ev.LeaveID, "topic", ev.Topic(), "error", err)
	}
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveResponse, error) {
	if _, err := authz.Caller(ctx); err != nil {
		return leave.LeaveResponse{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveResponse{}, err
		}
		return leave.LeaveResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	if _, err := authz.RequireSelfOr(ctx, request.EmployeeID, user.PermissionLeaveViewAll); err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.ToResponse(request), nil
}

// GetMyRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) GetMyRequests(ctx context.Context, filter leave.MyLeaveFilter) (leave.ListLeaveResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionLeaveViewOwn)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	query := leave.Query{
		EmployeeID: &caller.EmployeeID,
		Limit:      filter.Limit,
		Offset:     (filter.Page - 1) * filter.Limit,
	}
	if filter.Status != nil {
		status := leave.Status(*filter.Status)
		query.Status = &status
	}
	return s.list(ctx, query, filter.Page, filter.Limit)
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if _, err := authz.Require(ctx, user.PermissionLeaveViewAll); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	query := leave.Query{
		EmployeeID: filter.EmployeeID,
		Limit:      filter.Limit,
		Offset:     (filter.Page - 1) * filter.Limit,
	}
	if filter.Status != nil {
		status := leave.Status(*filter.Status)
		query.Status = &status
	}
	return s.list(ctx, query, filter.Page, filter.Limit)
}

func (s *LeaveServiceImpl) list(ctx context.Context, query leave.Query, page, limit int) (leave.ListLeaveResponse, error) {
	requests, total, err := s.LeaveRequestRepository.List(ctx, query)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, leave.ToResponse(request))
	}

	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Requests:   responses,
	}, nil
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepo leave.LeaveRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	adjustmentRepo adjustment.AdjustmentRepository,
	policy attendance.Policy,
	publisher events.Publisher,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepo,
		materializer:           NewDayMaterializer(attendanceRepo, adjustmentRepo, policy, clk),
		publisher:              publisher,
		clock:                  clk,
	}
}
