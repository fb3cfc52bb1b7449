package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	id, employee_id, leave_type, start_date, end_date, reason,
	status, approved_by, approved_at, rejection_reason,
	version, created_at, updated_at`

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &lr.StartDate, &lr.EndDate, &lr.Reason,
		&lr.Status, &lr.ApprovedBy, &lr.ApprovedAt, &lr.RejectionReason,
		&lr.Version, &lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	lr.StartDate = lr.StartDate.UTC()
	lr.EndDate = lr.EndDate.UTC()
	return lr, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			employee_id, leave_type, start_date, end_date, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leaveRequestColumns

	saved, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.Reason,
		request.Status,
	))
	if err != nil {
		return leave.LeaveRequest{}, classify(fmt.Errorf("failed to create leave request: %w", err))
	}
	return saved, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *leaveRequestRepository) getByID(ctx context.Context, id, lock string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id::text = $1` + lock
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, classify(fmt.Errorf("failed to get leave request by id: %w", err))
	}
	return lr, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $2,
			approved_by = $3,
			approved_at = $4,
			rejection_reason = $5,
			version = version + 1,
			updated_at = NOW()
		WHERE id::text = $1 AND version = $6
		RETURNING ` + leaveRequestColumns

	saved, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID,
		request.Status,
		request.ApprovedBy,
		request.ApprovedAt,
		request.RejectionReason,
		request.Version,
	))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, classify(fmt.Errorf("failed to update leave request: %w", err))
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leave_requests WHERE id::text = $1)`, request.ID).Scan(&exists); err != nil {
		return leave.LeaveRequest{}, classify(fmt.Errorf("failed to check leave request existence: %w", err))
	}
	if !exists {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return leave.LeaveRequest{}, leave.ErrConcurrentUpdate
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, query leave.Query) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if query.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *query.EmployeeID)
		argIdx++
	}
	if query.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *query.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count leave requests: %w", err))
	}

	listQuery := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE ` + baseWhere +
		` ORDER BY created_at DESC, id DESC`
	if query.Limit > 0 {
		listQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list leave requests: %w", err))
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to iterate leave requests: %w", err))
	}
	return requests, total, nil
}

// HasOverlap implements leave.LeaveRequestRepository. Inside a transaction it
// first takes a per-employee advisory lock so that two concurrent applications
// cannot both pass the check.
func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	if inTransaction(ctx) {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
			return false, classify(fmt.Errorf("failed to lock employee leave requests: %w", err))
		}
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status <> 'rejected'
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var overlap bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&overlap); err != nil {
		return false, classify(fmt.Errorf("failed to check leave overlap: %w", err))
	}
	return overlap, nil
}
