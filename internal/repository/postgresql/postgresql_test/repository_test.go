package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestAttendanceRepository_UpsertCheckIn(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	in := day.Add(9 * time.Hour)
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertCheckIn(ctx, attendance.Attendance{
				EmployeeID: "e1", Date: day, CheckIn: &in, Status: attendance.StatusPresent,
				CheckInLocation: &attendance.GeoPoint{Latitude: -6.2, Longitude: 106.8},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, attendance.ErrAlreadyCheckedIn):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, rejected)

	rec, err := repo.GetByEmployeeAndDate(ctx, "e1", day)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Date.Equal(day))
	assert.True(t, rec.CheckIn.Equal(in))
	require.NotNil(t, rec.CheckInLocation)
	assert.Equal(t, -6.2, rec.CheckInLocation.Latitude)
}

func TestAttendanceRepository_FillPlaceholder(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	placeholder, err := repo.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, Status: attendance.StatusAbsent})
	require.NoError(t, err)
	assert.Equal(t, 1, placeholder.Version)

	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, Status: attendance.StatusAbsent})
	assert.ErrorIs(t, err, attendance.ErrRecordExists)

	in := day.Add(10 * time.Hour)
	filled, err := repo.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, CheckIn: &in, Status: attendance.StatusLate})
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, filled.ID)
	assert.Equal(t, attendance.StatusLate, filled.Status)
	assert.Equal(t, 2, filled.Version)

	_, err = repo.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, CheckIn: &in, Status: attendance.StatusLate})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceRepository_CheckInKeepsApprovedLeave(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	leaveType := "sick"
	placeholder, err := repo.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, Status: attendance.StatusLeave, LeaveType: &leaveType})
	require.NoError(t, err)

	in := day.Add(9 * time.Hour)
	_, err = repo.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, CheckIn: &in, Status: attendance.StatusPresent})
	assert.ErrorIs(t, err, attendance.ErrOnLeave)

	kept, err := repo.GetByID(ctx, placeholder.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLeave, kept.Status)
	require.NotNil(t, kept.LeaveType)
	assert.Equal(t, "sick", *kept.LeaveType)
	assert.Nil(t, kept.CheckIn)
	assert.Equal(t, 1, kept.Version)
}

func TestAttendanceRepository_Update(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	in := day.Add(9 * time.Hour)
	rec, err := repo.UpsertCheckIn(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, CheckIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)

	out := day.Add(17 * time.Hour)
	stale := rec
	rec.CheckOut = &out
	rec.BreakSeconds = 2700
	updated, err := repo.Update(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Version+1, updated.Version)
	assert.True(t, updated.CheckOut.Equal(out))
	assert.Equal(t, int64(2700), updated.BreakSeconds)

	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrConcurrentUpdate)

	open, err := repo.ListOpenBefore(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, open)

	records, total, err := repo.List(ctx, attendance.Query{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, records, 1)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAdjustmentRepository_RollsBackWithTransaction(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	attendances := postgresql.NewAttendanceRepository(setup.DB)
	adjustments := postgresql.NewAdjustmentRepository(setup.DB)

	rec, err := attendances.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: day, Status: attendance.StatusAbsent})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := attendances.GetByIDForUpdate(ctx, rec.ID)
		if err != nil {
			return err
		}
		before := locked.Snapshot()
		locked.Status = attendance.StatusLeave
		if _, err := attendances.Update(ctx, locked); err != nil {
			return err
		}
		if _, err := adjustments.Create(ctx, adjustment.Adjustment{
			AttendanceID: rec.ID, AdjustedBy: "m1", Reason: "sick note",
			PreviousData: before, NewData: locked.Snapshot(),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := attendances.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, after.Status)
	history, err := adjustments.ListByAttendance(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Committed path keeps both writes.
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := attendances.GetByIDForUpdate(ctx, rec.ID)
		if err != nil {
			return err
		}
		before := locked.Snapshot()
		locked.Status = attendance.StatusLeave
		if _, err := attendances.Update(ctx, locked); err != nil {
			return err
		}
		_, err = adjustments.Create(ctx, adjustment.Adjustment{
			AttendanceID: rec.ID, AdjustedBy: "m1", Reason: "sick note",
			PreviousData: before, NewData: locked.Snapshot(),
		})
		return err
	})
	require.NoError(t, err)

	history, err = adjustments.ListByAttendance(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, attendance.StatusAbsent, history[0].PreviousData.Status)
	assert.Equal(t, attendance.StatusLeave, history[0].NewData.Status)
}

func TestLeaveRequestRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(setup.DB)

	req, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: "e1", LeaveType: leave.TypeSick,
		StartDate: day, EndDate: day.AddDate(0, 0, 2),
		Reason: "flu", Status: leave.StatusPending,
	})
	require.NoError(t, err)
	assert.True(t, req.StartDate.Equal(day))

	overlap, err := repo.HasOverlap(ctx, "e1", day.AddDate(0, 0, 2), day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, "e1", day.AddDate(0, 0, 3), day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.False(t, overlap)

	approver := "m1"
	now := time.Now().UTC()
	stale := req
	req.Status = leave.StatusApproved
	req.ApprovedBy = &approver
	req.ApprovedAt = &now
	updated, err := repo.Update(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, updated.Status)

	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, leave.ErrConcurrentUpdate)

	status := leave.StatusApproved
	list, total, err := repo.List(ctx, leave.Query{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestProfileRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employees (id, employee_code, full_name, department, employment_status, base_salary, hire_date, resignation_date)
		VALUES
			('e1', 'EMP-1', 'Ayu Lestari', 'Engineering', 'active', 26000, '2023-01-01', NULL),
			('e2', 'EMP-2', 'Budi', 'Ops', 'active', NULL, '2023-01-01', '2024-03-01'),
			('e3', 'EMP-3', 'Citra', 'Ops', 'inactive', 10000, '2023-01-01', NULL)`)
	require.NoError(t, err)

	repo := postgresql.NewProfileRepository(setup.DB)

	p, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, p.BaseSalary)
	assert.Equal(t, "26000", p.BaseSalary.String())

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	byID, err := repo.GetByIDs(ctx, []string{"e1", "e2", "missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Nil(t, byID["e2"].BaseSalary)

	employed, err := repo.ListEmployedOn(ctx, day)
	require.NoError(t, err)
	require.Len(t, employed, 1)
	assert.Equal(t, "e1", employed[0].ID)
}
