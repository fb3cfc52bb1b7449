package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
)

// DayMaterializer turns an approved request into leave attendance records so
// aggregation and payroll see leave days without joining leave requests.
type DayMaterializer struct {
	attendance.AttendanceRepository
	adjustment.AdjustmentRepository
	policy attendance.Policy
	clock  clock.Clock
}

func NewDayMaterializer(
	attendanceRepo attendance.AttendanceRepository,
	adjustmentRepo adjustment.AdjustmentRepository,
	policy attendance.Policy,
	clk clock.Clock,
) *DayMaterializer {
	return &DayMaterializer{
		AttendanceRepository: attendanceRepo,
		AdjustmentRepository: adjustmentRepo,
		policy:               policy,
		clock:                clk,
	}
}

// Materialize writes one leave record per covered work day. Days without a
// record get a new one; absent placeholders without a check-in are converted
// through an adjustment authored by the approver. Days the employee actually
// worked are left alone. Must run inside the approval transaction.
func (m *DayMaterializer) Materialize(ctx context.Context, request leave.LeaveRequest, approverID string) error {
	leaveType := string(request.LeaveType)
	notes := "leave: " + request.Reason

	created, converted := 0, 0
	for _, date := range request.Dates() {
		if !m.policy.IsWorkday(date) {
			continue
		}

		existing, err := m.AttendanceRepository.GetByEmployeeAndDate(ctx, request.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance for %s: %w", date.Format("2006-01-02"), err)
		}

		if existing == nil {
			_, err := m.AttendanceRepository.Create(ctx, attendance.Attendance{
				EmployeeID: request.EmployeeID,
				Date:       date,
				Status:     attendance.StatusLeave,
				LeaveType:  &leaveType,
				Notes:      notes,
			})
			if err != nil {
				if errors.Is(err, attendance.ErrRecordExists) {
					continue
				}
				return fmt.Errorf("failed to create leave day %s: %w", date.Format("2006-01-02"), err)
			}
			created++
			continue
		}

		if existing.CheckIn != nil || existing.Status != attendance.StatusAbsent {
			continue
		}

		if err := m.convertAbsence(ctx, *existing, request, approverID, leaveType, notes); err != nil {
			return err
		}
		converted++
	}

	slog.Info("Materialized leave days", "leave_id", request.ID, "employee_id", request.EmployeeID, "created", created, "converted", converted)
	return nil
}

func (m *DayMaterializer) convertAbsence(ctx context.Context, rec attendance.Attendance, request leave.LeaveRequest, approverID, leaveType, notes string) error {
	previous := rec.Snapshot()
	rec.Status = attendance.StatusLeave
	rec.LeaveType = &leaveType
	rec.Notes = notes
	next := rec.Snapshot()

	if _, err := m.AttendanceRepository.Update(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrConcurrentUpdate) {
			return err
		}
		return fmt.Errorf("failed to convert absence on %s: %w", rec.Date.Format("2006-01-02"), err)
	}

	_, err := m.AdjustmentRepository.Create(ctx, adjustment.Adjustment{
		AttendanceID: rec.ID,
		AdjustedBy:   approverID,
		Reason:       "approved leave request " + request.ID,
		PreviousData: previous,
		NewData:      next,
		CreatedAt:    m.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record leave adjustment: %w", err)
	}
	return nil
}
