package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
)

type adjustmentRepository struct {
	s *Store
}

func NewAdjustmentRepository(s *Store) adjustment.AdjustmentRepository {
	return &adjustmentRepository{s: s}
}

// Create implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) Create(ctx context.Context, adj adjustment.Adjustment) (adjustment.Adjustment, error) {
	defer r.s.lock(ctx)()

	id, err := newID()
	if err != nil {
		return adjustment.Adjustment{}, err
	}
	adj.ID = id
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = r.s.clock.Now()
	}

	r.s.adjustments = append(r.s.adjustments, adj)
	return adj, nil
}

// ListByAttendance implements adjustment.AdjustmentRepository.
func (r *adjustmentRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]adjustment.Adjustment, error) {
	defer r.s.lock(ctx)()

	entries := make([]adjustment.Adjustment, 0)
	for _, adj := range r.s.adjustments {
		if adj.AttendanceID == attendanceID {
			entries = append(entries, adj)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
