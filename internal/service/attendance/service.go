package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/authz"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

const (
	actionCheckIn    = "check_in"
	actionBreakStart = "break_start"
	actionBreakEnd   = "break_end"
	actionCheckOut   = "check_out"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policy attendance.Policy
	clock  clock.Clock
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionAttendanceCreate)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	today := s.policy.Today(now)
	if req.Date != "" {
		if date, _ := validator.IsValidDate(req.Date); !date.Equal(today) {
			return attendance.AttendanceResponse{}, validator.ValidationErrors{
				{Field: "date", Message: "check-in is only allowed for today (" + today.Format("2006-01-02") + ")"},
			}
		}
	}

	checkIn := now.UTC()
	rec := attendance.Attendance{
		EmployeeID:      caller.EmployeeID,
		Date:            today,
		CheckIn:         &checkIn,
		Status:          s.policy.StatusFor(checkIn),
		CheckInLocation: req.Location(),
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}

	created, err := s.AttendanceRepository.UpsertCheckIn(ctx, rec)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidState) {
			metrics.AttendanceRejected.WithLabelValues(actionCheckIn).Inc()
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	metrics.AttendanceTransitions.WithLabelValues(actionCheckIn, string(created.Status)).Inc()
	slog.Info("Employee checked in", "employee_id", caller.EmployeeID, "date", today.Format("2006-01-02"), "status", created.Status)

	return attendance.ToResponse(created, s.policy, now), nil
}

// StartLunchBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartLunchBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.transition(ctx, req.Date, actionBreakStart, func(rec *attendance.Attendance, at time.Time) error {
		return rec.StartBreak(at)
	})
}

// EndLunchBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndLunchBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.transition(ctx, req.Date, actionBreakEnd, func(rec *attendance.Attendance, at time.Time) error {
		return rec.EndBreak(at)
	})
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.transition(ctx, req.Date, actionCheckOut, func(rec *attendance.Attendance, at time.Time) error {
		if err := rec.Close(at, req.Location()); err != nil {
			return err
		}
		if req.Notes != nil {
			rec.Notes = *req.Notes
		}
		return nil
	})
}

// transition loads the caller's record for date (today when empty), applies
// fn and writes it back under the version check.
func (s *AttendanceServiceImpl) transition(ctx context.Context, date string, action string, fn func(rec *attendance.Attendance, at time.Time) error) (attendance.AttendanceResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionAttendanceCreate)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	day, err := s.resolveDate(date, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, caller.EmployeeID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if rec == nil {
		metrics.AttendanceRejected.WithLabelValues(action).Inc()
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}

	if err := fn(rec, now.UTC()); err != nil {
		metrics.AttendanceRejected.WithLabelValues(action).Inc()
		return attendance.AttendanceResponse{}, err
	}

	updated, err := s.AttendanceRepository.Update(ctx, *rec)
	if err != nil {
		if errors.Is(err, attendance.ErrConcurrentUpdate) {
			metrics.AttendanceRejected.WithLabelValues(action).Inc()
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	metrics.AttendanceTransitions.WithLabelValues(action, string(updated.Status)).Inc()
	slog.Info("Attendance updated", "action", action, "employee_id", caller.EmployeeID, "attendance_id", updated.ID, "state", updated.State())

	return attendance.ToResponse(updated, s.policy, now), nil
}

// resolveDate returns today for an empty date. Future dates are rejected.
func (s *AttendanceServiceImpl) resolveDate(date string, now time.Time) (time.Time, error) {
	today := s.policy.Today(now)
	if date == "" {
		return today, nil
	}
	day, _ := validator.IsValidDate(date)
	if day.After(today) {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must not be in the future"}}
	}
	return day, nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context) (attendance.TodayResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionAttendanceViewOwn)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	now := s.clock.Now()
	today := s.policy.Today(now)

	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, caller.EmployeeID, today)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	resp := attendance.TodayResponse{
		Date:  today.Format("2006-01-02"),
		State: string(attendance.StateNotCheckedIn),
	}
	if rec != nil {
		full := attendance.ToResponse(*rec, s.policy, now)
		resp.State = full.State
		resp.Attendance = &full
	}
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	caller, err := authz.Require(ctx, user.PermissionAttendanceViewOwn)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	query := attendance.Query{
		EmployeeID: &caller.EmployeeID,
		StartDate:  attendance.ParseOptionalDate(filter.StartDate),
		EndDate:    attendance.ParseOptionalDate(filter.EndDate),
		Limit:      filter.Limit,
		Offset:     (filter.Page - 1) * filter.Limit,
	}
	return s.list(ctx, query, filter.Page, filter.Limit)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if _, err := authz.Require(ctx, user.PermissionAttendanceViewAll); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	query := attendance.Query{
		EmployeeID: filter.EmployeeID,
		StartDate:  attendance.ParseOptionalDate(filter.StartDate),
		EndDate:    attendance.ParseOptionalDate(filter.EndDate),
		Limit:      filter.Limit,
		Offset:     (filter.Page - 1) * filter.Limit,
	}
	if filter.Status != nil {
		status := attendance.Status(*filter.Status)
		query.Status = &status
	}
	return s.list(ctx, query, filter.Page, filter.Limit)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, query attendance.Query, page, limit int) (attendance.ListAttendanceResponse, error) {
	attendances, total, err := s.AttendanceRepository.List(ctx, query)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	now := s.clock.Now()
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, attendance.ToResponse(att, s.policy, now))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if _, err := authz.Caller(ctx); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if _, err := authz.RequireSelfOr(ctx, rec.EmployeeID, user.PermissionAttendanceViewAll); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(rec, s.policy, s.clock.Now()), nil
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policy attendance.Policy,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		policy:               policy,
		clock:                clk,
	}
}
