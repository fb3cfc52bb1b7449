package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

// UpsertCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertCheckIn(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	now := r.s.clock.Now()
	if id, ok := r.s.byDay[keyOf(att.EmployeeID, att.Date)]; ok {
		existing := r.s.attendances[id]
		if existing.CheckIn != nil {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		if existing.Status == attendance.StatusLeave {
			return attendance.Attendance{}, attendance.ErrOnLeave
		}
		existing.CheckIn = att.CheckIn
		existing.CheckInLocation = att.CheckInLocation
		existing.Status = att.Status
		if att.Notes != "" {
			existing.Notes = att.Notes
		}
		existing.Version++
		existing.UpdatedAt = now
		r.s.attendances[id] = existing.Clone()
		return existing.Clone(), nil
	}

	return r.insert(att, now)
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.byDay[keyOf(att.EmployeeID, att.Date)]; ok {
		return attendance.Attendance{}, attendance.ErrRecordExists
	}
	return r.insert(att, r.s.clock.Now())
}

func (r *attendanceRepository) insert(att attendance.Attendance, now time.Time) (attendance.Attendance, error) {
	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.ID = id
	att.Version = 1
	att.CreatedAt = now
	att.UpdatedAt = now

	r.s.attendances[id] = att.Clone()
	r.s.byDay[keyOf(att.EmployeeID, att.Date)] = id
	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	att, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return att.Clone(), nil
}

// GetByIDForUpdate implements attendance.AttendanceRepository. The
// transaction already holds the store lock.
func (r *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.GetByID(ctx, id)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	id, ok := r.s.byDay[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	att := r.s.attendances[id].Clone()
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	current, ok := r.s.attendances[att.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if current.Version != att.Version {
		return attendance.Attendance{}, attendance.ErrConcurrentUpdate
	}

	// Identity columns never change.
	att.EmployeeID = current.EmployeeID
	att.Date = current.Date
	att.CreatedAt = current.CreatedAt
	att.Version++
	att.UpdatedAt = r.s.clock.Now()

	r.s.attendances[att.ID] = att.Clone()
	return att, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, query attendance.Query) ([]attendance.Attendance, int64, error) {
	defer r.s.lock(ctx)()

	var matched []attendance.Attendance
	for _, att := range r.s.attendances {
		if query.EmployeeID != nil && att.EmployeeID != *query.EmployeeID {
			continue
		}
		if query.StartDate != nil && att.Date.Before(*query.StartDate) {
			continue
		}
		if query.EndDate != nil && att.Date.After(*query.EndDate) {
			continue
		}
		if query.Status != nil && att.Status != *query.Status {
			continue
		}
		matched = append(matched, att.Clone())
	}

	// Newest first, like the SQL adapter.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	return paginate(matched, query.Limit, query.Offset), int64(len(matched)), nil
}

// ListRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRange(ctx context.Context, start, end time.Time, employeeID *string) ([]attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	records := make([]attendance.Attendance, 0)
	for _, att := range r.s.attendances {
		if att.Date.Before(start) || att.Date.After(end) {
			continue
		}
		if employeeID != nil && att.EmployeeID != *employeeID {
			continue
		}
		records = append(records, att.Clone())
	}
	sortByDateThenEmployee(records)
	return records, nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	records := make([]attendance.Attendance, 0)
	for _, att := range r.s.attendances {
		if att.Date.Before(date) && att.CheckIn != nil && att.CheckOut == nil {
			records = append(records, att.Clone())
		}
	}
	sortByDateThenEmployee(records)
	return records, nil
}

func sortByDateThenEmployee(records []attendance.Attendance) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
}
