package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	adjustmentsvc "github.com/cmlabs-hris/hris-timekeeping/internal/service/adjustment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type jobsEnv struct {
	clock       *clock.Fake
	store       *memory.Store
	attendances attendance.AttendanceRepository
	adjustments adjustment.AdjustmentRepository
	scheduler   *Scheduler
}

func newJobsEnv(now time.Time, lookbackDays int) jobsEnv {
	clk := clock.NewFake(now)
	store := memory.NewStore(clk)
	env := jobsEnv{
		clock:       clk,
		store:       store,
		attendances: memory.NewAttendanceRepository(store),
		adjustments: memory.NewAdjustmentRepository(store),
		scheduler:   NewScheduler(clk),
	}
	adjustments := adjustmentsvc.NewAdjustmentService(store, env.attendances, env.adjustments, clk)
	jobs := NewAttendanceJobs(env.attendances, memory.NewProfileRepository(store), adjustments, attendance.DefaultPolicy(), clk, lookbackDays)
	jobs.RegisterJobs(env.scheduler, time.Hour)

	for _, id := range []string{"e1", "e2"} {
		store.PutProfile(employee.Profile{ID: id, FullName: id, EmploymentStatus: employee.EmploymentStatusActive})
	}
	store.PutProfile(employee.Profile{ID: "gone", EmploymentStatus: employee.EmploymentStatusInactive})
	return env
}

func TestAttendanceJobs_RunOnce(t *testing.T) {
	ctx := context.Background()
	env := newJobsEnv(monday.AddDate(0, 0, 1).Add(8*time.Hour), 1)

	in := monday.Add(9 * time.Hour)
	lunch := monday.Add(13 * time.Hour)
	open, err := env.attendances.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: monday, CheckIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)
	open.LunchStart = &lunch
	open, err = env.attendances.Update(ctx, open)
	require.NoError(t, err)

	require.NoError(t, env.scheduler.RunOnce(ctx))

	closed, err := env.attendances.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedOut, closed.State())
	eod := monday.Add(18 * time.Hour)
	assert.True(t, closed.CheckOut.Equal(eod))
	assert.True(t, closed.LunchEnd.Equal(eod))

	history, err := env.adjustments.ListByAttendance(ctx, open.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, user.SystemActorID, history[0].AdjustedBy)
	assert.Equal(t, autoCloseReason, history[0].Reason)

	absent, err := env.attendances.GetByEmployeeAndDate(ctx, "e2", monday)
	require.NoError(t, err)
	require.NotNil(t, absent)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)

	gone, err := env.attendances.GetByEmployeeAndDate(ctx, "gone", monday)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// A second run changes nothing.
	require.NoError(t, env.scheduler.RunOnce(ctx))
	_, total, err := env.attendances.List(ctx, attendance.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	history, err = env.adjustments.ListByAttendance(ctx, open.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAttendanceJobs_MarkAbsentSkipsRestDays(t *testing.T) {
	ctx := context.Background()
	// Monday morning: yesterday was Sunday.
	env := newJobsEnv(monday.Add(8*time.Hour), 1)

	require.NoError(t, env.scheduler.RunJob(ctx, JobMarkAbsent))

	_, total, err := env.attendances.List(ctx, attendance.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestAttendanceJobs_MarkAbsentLookback(t *testing.T) {
	ctx := context.Background()
	// Tuesday with a three day window covers Saturday and Monday.
	env := newJobsEnv(monday.AddDate(0, 0, 1).Add(8*time.Hour), 3)

	require.NoError(t, env.scheduler.RunJob(ctx, JobMarkAbsent))

	records, err := env.attendances.ListRange(ctx, monday.AddDate(0, 0, -3), monday, nil)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.True(t, records[0].Date.Equal(monday.AddDate(0, 0, -2)))
	assert.True(t, records[3].Date.Equal(monday))
}

func TestAttendanceJobs_CloseKeepsLateCheckIn(t *testing.T) {
	ctx := context.Background()
	env := newJobsEnv(monday.AddDate(0, 0, 1).Add(8*time.Hour), 1)

	// Checked in after the end-of-day hour.
	in := monday.Add(20 * time.Hour)
	rec, err := env.attendances.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: monday, CheckIn: &in, Status: attendance.StatusLate})
	require.NoError(t, err)

	require.NoError(t, env.scheduler.RunJob(ctx, JobCloseStaleSessions))

	closed, err := env.attendances.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.True(t, closed.CheckOut.Equal(in))
}
