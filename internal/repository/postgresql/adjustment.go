package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

type adjustmentRepository struct {
	db *database.DB
}

func NewAdjustmentRepository(db *database.DB) adjustment.AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

// Create implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) Create(ctx context.Context, adj adjustment.Adjustment) (adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_adjustments (
			attendance_id, adjusted_by, reason, previous_data, new_data, created_at
		) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, created_at
	`

	var createdAt interface{}
	if !adj.CreatedAt.IsZero() {
		createdAt = adj.CreatedAt
	}

	err := q.QueryRow(ctx, query,
		adj.AttendanceID,
		adj.AdjustedBy,
		adj.Reason,
		adj.PreviousData,
		adj.NewData,
		createdAt,
	).Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return adjustment.Adjustment{}, classify(fmt.Errorf("failed to create adjustment: %w", err))
	}
	return adj, nil
}

// ListByAttendance implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]adjustment.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, attendance_id, adjusted_by, reason, previous_data, new_data, created_at
		FROM attendance_adjustments
		WHERE attendance_id::text = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list adjustments: %w", err))
	}
	defer rows.Close()

	adjustments := make([]adjustment.Adjustment, 0)
	for rows.Next() {
		var adj adjustment.Adjustment
		if err := rows.Scan(
			&adj.ID, &adj.AttendanceID, &adj.AdjustedBy, &adj.Reason,
			&adj.PreviousData, &adj.NewData, &adj.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate adjustments: %w", err))
	}
	return adjustments, nil
}
