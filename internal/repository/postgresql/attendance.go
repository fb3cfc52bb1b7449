package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, lunch_start, lunch_end, break_seconds,
	status, notes, leave_type,
	check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
	version, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var inLat, inLng, outLat, outLng *float64
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut, &att.LunchStart, &att.LunchEnd, &att.BreakSeconds,
		&att.Status, &att.Notes, &att.LeaveType,
		&inLat, &inLng, &outLat, &outLng,
		&att.Version, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.Date = att.Date.UTC()
	att.CheckInLocation = toPoint(inLat, inLng)
	att.CheckOutLocation = toPoint(outLat, outLng)
	return att, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate attendances: %w", err))
	}
	return records, nil
}

func toPoint(lat, lng *float64) *attendance.GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &attendance.GeoPoint{Latitude: *lat, Longitude: *lng}
}

func fromPoint(p *attendance.GeoPoint) (lat, lng *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Latitude, &p.Longitude
}

// UpsertCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertCheckIn(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	// An absence or holiday placeholder takes the check-in. A row that
	// already has one, or carries approved leave, is left alone and no row
	// comes back.
	query := `
		INSERT INTO attendances (
			employee_id, date, check_in, status, notes, check_in_latitude, check_in_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			status = EXCLUDED.status,
			notes = CASE WHEN EXCLUDED.notes <> '' THEN EXCLUDED.notes ELSE attendances.notes END,
			check_in_latitude = EXCLUDED.check_in_latitude,
			check_in_longitude = EXCLUDED.check_in_longitude,
			version = attendances.version + 1,
			updated_at = NOW()
		WHERE attendances.check_in IS NULL AND attendances.status <> 'leave'
		RETURNING ` + attendanceColumns

	lat, lng := fromPoint(att.CheckInLocation)
	saved, err := scanAttendance(q.QueryRow(ctx, query,
		att.EmployeeID, att.Date, att.CheckIn, att.Status, att.Notes, lat, lng,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, r.checkInConflict(ctx, q, att)
		}
		return attendance.Attendance{}, classify(fmt.Errorf("failed to upsert check-in: %w", err))
	}
	return saved, nil
}

// checkInConflict explains why UpsertCheckIn left the existing row alone.
func (r *attendanceRepository) checkInConflict(ctx context.Context, q database.Querier, att attendance.Attendance) error {
	var onLeave bool
	err := q.QueryRow(ctx, `
		SELECT check_in IS NULL AND status = 'leave'
		FROM attendances
		WHERE employee_id = $1 AND date = $2`,
		att.EmployeeID, att.Date,
	).Scan(&onLeave)
	if err != nil {
		return classify(fmt.Errorf("failed to inspect existing attendance: %w", err))
	}
	if onLeave {
		return attendance.ErrOnLeave
	}
	return attendance.ErrAlreadyCheckedIn
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			employee_id, date, check_in, check_out, lunch_start, lunch_end, break_seconds,
			status, notes, leave_type,
			check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING ` + attendanceColumns

	inLat, inLng := fromPoint(att.CheckInLocation)
	outLat, outLng := fromPoint(att.CheckOutLocation)
	saved, err := scanAttendance(q.QueryRow(ctx, query,
		att.EmployeeID, att.Date, att.CheckIn, att.CheckOut, att.LunchStart, att.LunchEnd, att.BreakSeconds,
		att.Status, att.Notes, att.LeaveType,
		inLat, inLng, outLat, outLng,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
		return attendance.Attendance{}, classify(fmt.Errorf("failed to create attendance: %w", err))
	}
	return saved, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *attendanceRepository) getByID(ctx context.Context, id, lock string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id::text = $1` + lock
	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, classify(fmt.Errorf("failed to get attendance by id: %w", err))
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2`
	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(fmt.Errorf("failed to get attendance by employee and date: %w", err))
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET
			check_in = $2, check_out = $3, lunch_start = $4, lunch_end = $5, break_seconds = $6,
			status = $7, notes = $8, leave_type = $9,
			check_in_latitude = $10, check_in_longitude = $11,
			check_out_latitude = $12, check_out_longitude = $13,
			version = version + 1,
			updated_at = NOW()
		WHERE id::text = $1 AND version = $14
		RETURNING ` + attendanceColumns

	inLat, inLng := fromPoint(att.CheckInLocation)
	outLat, outLng := fromPoint(att.CheckOutLocation)
	saved, err := scanAttendance(q.QueryRow(ctx, query,
		att.ID, att.CheckIn, att.CheckOut, att.LunchStart, att.LunchEnd, att.BreakSeconds,
		att.Status, att.Notes, att.LeaveType,
		inLat, inLng, outLat, outLng,
		att.Version,
	))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Attendance{}, classify(fmt.Errorf("failed to update attendance: %w", err))
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attendances WHERE id::text = $1)`, att.ID).Scan(&exists); err != nil {
		return attendance.Attendance{}, classify(fmt.Errorf("failed to check attendance existence: %w", err))
	}
	if !exists {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return attendance.Attendance{}, attendance.ErrConcurrentUpdate
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, query attendance.Query) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if query.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *query.EmployeeID)
		argIdx++
	}
	if query.StartDate != nil {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *query.StartDate)
		argIdx++
	}
	if query.EndDate != nil {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *query.EndDate)
		argIdx++
	}
	if query.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *query.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count attendances: %w", err))
	}

	listQuery := `SELECT ` + attendanceColumns + ` FROM attendances WHERE ` + baseWhere +
		` ORDER BY date DESC, employee_id`
	if query.Limit > 0 {
		listQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list attendances: %w", err))
	}
	records, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRange(ctx context.Context, start, end time.Time, employeeID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date BETWEEN $1 AND $2
		  AND ($3::text IS NULL OR employee_id = $3)
		ORDER BY date, employee_id`

	rows, err := q.Query(ctx, query, start, end, employeeID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list attendances in range: %w", err))
	}
	return collectAttendances(rows)
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date < $1 AND check_in IS NOT NULL AND check_out IS NULL
		ORDER BY date, employee_id`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list open attendances: %w", err))
	}
	return collectAttendances(rows)
}
