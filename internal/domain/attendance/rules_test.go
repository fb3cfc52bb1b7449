package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2024, 3, 4, hour, min, sec, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestWorkingHours(t *testing.T) {
	tests := []struct {
		name   string
		record Attendance
		now    time.Time
		want   float64
	}{
		{
			name:   "not checked in",
			record: Attendance{},
			now:    at(12, 0, 0),
			want:   0,
		},
		{
			name: "full day with lunch",
			record: Attendance{
				CheckIn:    ptr(at(9, 15, 0)),
				LunchStart: ptr(at(13, 0, 0)),
				LunchEnd:   ptr(at(13, 30, 0)),
				CheckOut:   ptr(at(18, 0, 0)),
			},
			now:  at(20, 0, 0),
			want: 8.25,
		},
		{
			name:   "still checked in counts until now",
			record: Attendance{CheckIn: ptr(at(8, 0, 0))},
			now:    at(10, 30, 0),
			want:   2.5,
		},
		{
			name: "open break counts until now",
			record: Attendance{
				CheckIn:    ptr(at(8, 0, 0)),
				LunchStart: ptr(at(12, 0, 0)),
			},
			now:  at(12, 45, 0),
			want: 4,
		},
		{
			name: "clock skew clamps to zero",
			record: Attendance{
				CheckIn: ptr(at(10, 0, 0)),
			},
			now:  at(9, 0, 0),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WorkingHours(tt.record, tt.now), 1e-9)
		})
	}
}

func TestOvertimeHours(t *testing.T) {
	policy := DefaultPolicy()
	record := Attendance{
		CheckIn:    ptr(at(9, 15, 0)),
		LunchStart: ptr(at(13, 0, 0)),
		LunchEnd:   ptr(at(13, 30, 0)),
		CheckOut:   ptr(at(18, 0, 0)),
	}
	assert.InDelta(t, 0.25, policy.OvertimeHours(record, at(20, 0, 0)), 1e-9)

	short := Attendance{CheckIn: ptr(at(9, 0, 0)), CheckOut: ptr(at(12, 0, 0))}
	assert.Equal(t, 0.0, policy.OvertimeHours(short, at(20, 0, 0)))
}

func TestIsLate(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.IsLate(at(9, 0, 0)))
	assert.False(t, policy.IsLate(at(9, 59, 59)))
	assert.True(t, policy.IsLate(at(10, 5, 0)))
	assert.Equal(t, StatusLate, policy.StatusFor(at(10, 5, 0)))
	assert.Equal(t, StatusPresent, policy.StatusFor(at(8, 30, 0)))
}

func TestIsLate_UsesPolicyLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	policy := DefaultPolicy()
	policy.Location = jakarta

	// 02:30 UTC is 09:30 in Jakarta.
	assert.False(t, policy.IsLate(time.Date(2024, 3, 4, 2, 30, 0, 0, time.UTC)))
	// 03:01 UTC is 10:01 in Jakarta.
	assert.True(t, policy.IsLate(time.Date(2024, 3, 4, 3, 1, 0, 0, time.UTC)))
}

func TestStateTransitions(t *testing.T) {
	rec := Attendance{}
	assert.Equal(t, StateNotCheckedIn, rec.State())
	assert.ErrorIs(t, rec.StartBreak(at(12, 0, 0)), ErrNotCheckedIn)
	assert.ErrorIs(t, rec.Close(at(17, 0, 0), nil), ErrNotCheckedIn)

	rec.CheckIn = ptr(at(9, 0, 0))
	assert.Equal(t, StateCheckedIn, rec.State())
	assert.ErrorIs(t, rec.EndBreak(at(12, 0, 0)), ErrNotOnBreak)

	require.NoError(t, rec.StartBreak(at(12, 0, 0)))
	assert.Equal(t, StateOnBreak, rec.State())
	assert.ErrorIs(t, rec.StartBreak(at(12, 5, 0)), ErrAlreadyOnBreak)

	require.NoError(t, rec.EndBreak(at(12, 30, 0)))
	assert.Equal(t, StateCheckedIn, rec.State())

	require.NoError(t, rec.StartBreak(at(15, 0, 0)))
	assert.Equal(t, StateOnBreak, rec.State())
	require.NoError(t, rec.EndBreak(at(15, 15, 0)))

	require.NoError(t, rec.Close(at(17, 0, 0), &GeoPoint{Latitude: -6.2, Longitude: 106.8}))
	assert.Equal(t, StateCheckedOut, rec.State())
	assert.ErrorIs(t, rec.Close(at(18, 0, 0), nil), ErrAlreadyCheckedOut)
	assert.ErrorIs(t, rec.StartBreak(at(18, 0, 0)), apperror.ErrInvalidState)
}

func TestStartBreak_SecondBreakAfterClosedOne(t *testing.T) {
	rec := Attendance{CheckIn: ptr(at(9, 0, 0))}

	require.NoError(t, rec.StartBreak(at(12, 0, 0)))
	require.NoError(t, rec.EndBreak(at(12, 30, 0)))
	require.NoError(t, rec.StartBreak(at(15, 0, 0)))

	assert.Equal(t, int64(30*60), rec.BreakSeconds)
	assert.True(t, rec.LunchStart.Equal(at(15, 0, 0)))
	assert.Nil(t, rec.LunchEnd)
	assert.Equal(t, StateOnBreak, rec.State())

	require.NoError(t, rec.EndBreak(at(15, 15, 0)))
	require.NoError(t, rec.Close(at(17, 0, 0), nil))

	assert.Equal(t, 45*time.Minute, rec.BreakDuration(at(18, 0, 0)))
	// 8h checked in minus 30m and 15m of breaks.
	assert.InDelta(t, 7.25, WorkingHours(rec, at(18, 0, 0)), 1e-9)
	require.NoError(t, rec.Snapshot().Validate(at(18, 0, 0)))
}

func TestStartBreak_NotBeforePreviousBreakEnd(t *testing.T) {
	rec := Attendance{CheckIn: ptr(at(9, 0, 0))}
	require.NoError(t, rec.StartBreak(at(12, 0, 0)))
	require.NoError(t, rec.EndBreak(at(12, 30, 0)))

	require.NoError(t, rec.StartBreak(at(12, 10, 0)))
	assert.True(t, rec.LunchStart.Equal(at(12, 30, 0)))
}

func TestWorkingHours_OpenSecondBreak(t *testing.T) {
	rec := Attendance{
		CheckIn:      ptr(at(9, 0, 0)),
		LunchStart:   ptr(at(14, 0, 0)),
		BreakSeconds: 3600,
	}
	// 6h since check-in, 1h earlier break, 1h open break.
	assert.InDelta(t, 4.0, WorkingHours(rec, at(15, 0, 0)), 1e-9)
}

func TestSnapshotValidate_NegativeBreakSeconds(t *testing.T) {
	s := Attendance{CheckIn: ptr(at(9, 0, 0)), Status: StatusPresent, BreakSeconds: -1}.Snapshot()
	assert.Error(t, s.Validate(at(10, 0, 0)))
}

func TestClose_EndsOpenBreak(t *testing.T) {
	rec := Attendance{
		CheckIn:    ptr(at(9, 0, 0)),
		LunchStart: ptr(at(16, 0, 0)),
	}
	require.NoError(t, rec.Close(at(17, 0, 0), nil))

	require.NotNil(t, rec.LunchEnd)
	assert.True(t, rec.LunchEnd.Equal(at(17, 0, 0)))
	assert.InDelta(t, 7.0, WorkingHours(rec, at(20, 0, 0)), 1e-9)
}

func TestSnapshotValidate(t *testing.T) {
	now := at(20, 0, 0)
	tests := []struct {
		name      string
		snapshot  Snapshot
		wantField string
	}{
		{
			name:     "valid closed day",
			snapshot: Snapshot{Status: StatusPresent, CheckIn: ptr(at(9, 0, 0)), CheckOut: ptr(at(17, 0, 0))},
		},
		{
			name:      "check out before check in",
			snapshot:  Snapshot{Status: StatusPresent, CheckIn: ptr(at(9, 0, 0)), CheckOut: ptr(at(8, 0, 0))},
			wantField: "check_out",
		},
		{
			name:      "lunch end before start",
			snapshot:  Snapshot{Status: StatusPresent, CheckIn: ptr(at(9, 0, 0)), LunchStart: ptr(at(13, 0, 0)), LunchEnd: ptr(at(12, 0, 0))},
			wantField: "lunch_end",
		},
		{
			name:      "lunch outside session",
			snapshot:  Snapshot{Status: StatusPresent, CheckIn: ptr(at(9, 0, 0)), CheckOut: ptr(at(12, 0, 0)), LunchStart: ptr(at(13, 0, 0))},
			wantField: "lunch_start",
		},
		{
			name:      "unknown status",
			snapshot:  Snapshot{Status: "on_leave"},
			wantField: "status",
		},
		{
			name:      "bad coordinates",
			snapshot:  Snapshot{Status: StatusPresent, CheckInLocation: &GeoPoint{Latitude: 95}},
			wantField: "check_in_location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snapshot.Validate(now)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantField)
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	leaveType := "sick"
	rec := Attendance{
		CheckIn:         ptr(at(9, 0, 0)),
		Status:          StatusLeave,
		LeaveType:       &leaveType,
		CheckInLocation: &GeoPoint{Latitude: 1, Longitude: 2},
	}
	snap := rec.Snapshot()

	raw, err := snap.Value()
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, decoded.Scan(raw))
	assert.True(t, decoded.CheckIn.Equal(*snap.CheckIn))
	assert.Equal(t, snap.LeaveType, decoded.LeaveType)
	assert.Equal(t, snap.CheckInLocation, decoded.CheckInLocation)

	// Snapshots do not alias the record.
	snap.CheckInLocation.Latitude = 50
	assert.Equal(t, 1.0, rec.CheckInLocation.Latitude)
}

func TestPolicyCalendar(t *testing.T) {
	policy := DefaultPolicy()
	policy.Location = time.FixedZone("WIB", 7*60*60)

	// 20:00 UTC on Sunday is already Monday in Jakarta.
	today := policy.Today(time.Date(2024, 3, 3, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), today)
	assert.True(t, policy.IsWorkday(today))
	assert.False(t, policy.IsWorkday(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))

	eod := policy.EndOfDay(today)
	assert.Equal(t, 18, eod.In(policy.Location).Hour())
	assert.Equal(t, 4, eod.In(policy.Location).Day())
}
