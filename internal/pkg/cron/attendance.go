package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
)

const (
	JobMarkAbsent         = "mark_absent"
	JobCloseStaleSessions = "close_stale_sessions"

	autoCloseReason = "auto-closed: session left open past end of day"
)

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	profileRepo    employee.ProfileRepository
	adjustmentSvc  adjustment.AdjustmentService
	policy         attendance.Policy
	clock          clock.Clock
	lookbackDays   int
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	profileRepo employee.ProfileRepository,
	adjustmentSvc adjustment.AdjustmentService,
	policy attendance.Policy,
	clk clock.Clock,
	lookbackDays int,
) *AttendanceJobs {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		profileRepo:    profileRepo,
		adjustmentSvc:  adjustmentSvc,
		policy:         policy,
		clock:          clk,
		lookbackDays:   lookbackDays,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	// Close first so a stale session is never mistaken for a missing day.
	scheduler.AddJob(JobCloseStaleSessions, interval, j.CloseStaleSessions)
	scheduler.AddJob(JobMarkAbsent, interval, j.MarkAbsent)
}

// MarkAbsent creates an explicit absent record for every employed employee
// without a record on each past working day in the lookback window.
func (j *AttendanceJobs) MarkAbsent(ctx context.Context) error {
	today := j.policy.Today(j.clock.Now())

	created := 0
	for offset := j.lookbackDays; offset >= 1; offset-- {
		date := today.AddDate(0, 0, -offset)
		if !j.policy.IsWorkday(date) {
			continue
		}

		profiles, err := j.profileRepo.ListEmployedOn(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to list employees for %s: %w", date.Format("2006-01-02"), err)
		}

		for _, p := range profiles {
			_, err := j.attendanceRepo.Create(ctx, attendance.Attendance{
				EmployeeID: p.ID,
				Date:       date,
				Status:     attendance.StatusAbsent,
				Notes:      "no check-in recorded",
			})
			if errors.Is(err, attendance.ErrRecordExists) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to mark %s absent on %s: %w", p.ID, date.Format("2006-01-02"), err)
			}
			created++
		}
	}

	if created > 0 {
		slog.Info("Cron: marked absences", "count", created)
	}
	return nil
}

// CloseStaleSessions checks out records from earlier days that were never
// closed. Each closure is recorded as an adjustment by the system actor.
func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	today := j.policy.Today(j.clock.Now())

	stale, err := j.attendanceRepo.ListOpenBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to get stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	sysCtx := user.SystemContext(ctx)
	closed := 0
	for _, rec := range stale {
		closedRec := rec.Clone()
		if err := closedRec.Close(j.policy.EndOfDay(rec.Date), nil); err != nil {
			slog.Warn("Cron: cannot close session", "attendance_id", rec.ID, "error", err)
			continue
		}

		patch := adjustment.Patch{CheckOut: closedRec.CheckOut}
		if rec.LunchEnd == nil && closedRec.LunchEnd != nil {
			patch.LunchEnd = closedRec.LunchEnd
		}

		_, err := j.adjustmentSvc.RecordAdjustment(sysCtx, adjustment.RecordAdjustmentRequest{
			AttendanceID: rec.ID,
			Reason:       autoCloseReason,
			Changes:      patch,
		})
		if err != nil {
			slog.Error("Cron: failed to close session", "attendance_id", rec.ID, "error", err)
			continue
		}
		closed++
	}

	slog.Info("Cron: closed stale sessions", "closed", closed, "found", len(stale))
	return nil
}
