package adjustment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/authz"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

type AdjustmentServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	adjustment.AdjustmentRepository
	clock clock.Clock
}

// RecordAdjustment implements adjustment.AdjustmentService.
func (s *AdjustmentServiceImpl) RecordAdjustment(ctx context.Context, req adjustment.RecordAdjustmentRequest) (adjustment.AdjustmentResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionAttendanceAdjust)
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	var recorded adjustment.Adjustment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(ctx, req.AttendanceID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return err
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		now := s.clock.Now()
		previous := rec.Snapshot()
		next := req.Changes.Apply(previous)

		if len(adjustment.Diff(previous, next)) == 0 {
			return validator.ValidationErrors{{Field: "changes", Message: "changes leave the record unchanged"}}
		}
		if err := next.Validate(now); err != nil {
			return err
		}

		rec.Restore(next)
		if _, err := s.AttendanceRepository.Update(ctx, rec); err != nil {
			if errors.Is(err, attendance.ErrConcurrentUpdate) {
				return err
			}
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		recorded, err = s.AdjustmentRepository.Create(ctx, adjustment.Adjustment{
			AttendanceID: rec.ID,
			AdjustedBy:   caller.EmployeeID,
			Reason:       req.Reason,
			PreviousData: previous,
			NewData:      next,
			CreatedAt:    now.UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to record adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		return adjustment.AdjustmentResponse{}, err
	}

	actor := "user"
	if caller.Role == user.RoleSystem {
		actor = "system"
	}
	metrics.Adjustments.WithLabelValues(actor).Inc()
	slog.Info("Attendance adjusted",
		"attendance_id", recorded.AttendanceID,
		"adjustment_id", recorded.ID,
		"adjusted_by", recorded.AdjustedBy,
		"changes", len(recorded.Changes()),
	)

	return adjustment.ToResponse(recorded), nil
}

// ListAdjustments implements adjustment.AdjustmentService.
func (s *AdjustmentServiceImpl) ListAdjustments(ctx context.Context, attendanceID string) ([]adjustment.AdjustmentResponse, error) {
	if _, err := authz.Require(ctx, user.PermissionAttendanceAdjust); err != nil {
		return nil, err
	}

	// Unknown records are NotFound rather than an empty history.
	if _, err := s.AttendanceRepository.GetByID(ctx, attendanceID); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	entries, err := s.AdjustmentRepository.ListByAttendance(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}

	responses := make([]adjustment.AdjustmentResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, adjustment.ToResponse(entry))
	}
	return responses, nil
}

func NewAdjustmentService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	adjustmentRepo adjustment.AdjustmentRepository,
	clk clock.Clock,
) adjustment.AdjustmentService {
	return &AdjustmentServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		AdjustmentRepository: adjustmentRepo,
		clock:                clk,
	}
}
