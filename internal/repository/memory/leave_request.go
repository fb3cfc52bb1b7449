package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.s.lock(ctx)()

	id, err := newID()
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	now := r.s.clock.Now()
	request.ID = id
	request.Version = 1
	request.CreatedAt = now
	request.UpdatedAt = now

	r.s.leaves[id] = request
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.s.lock(ctx)()

	request, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.s.lock(ctx)()

	current, ok := r.s.leaves[request.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if current.Version != request.Version {
		return leave.LeaveRequest{}, leave.ErrConcurrentUpdate
	}

	request.CreatedAt = current.CreatedAt
	request.Version++
	request.UpdatedAt = r.s.clock.Now()

	r.s.leaves[request.ID] = request
	return request, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, query leave.Query) ([]leave.LeaveRequest, int64, error) {
	defer r.s.lock(ctx)()

	var matched []leave.LeaveRequest
	for _, request := range r.s.leaves {
		if query.EmployeeID != nil && request.EmployeeID != *query.EmployeeID {
			continue
		}
		if query.Status != nil && request.Status != *query.Status {
			continue
		}
		matched = append(matched, request)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	return paginate(matched, query.Limit, query.Offset), int64(len(matched)), nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	defer r.s.lock(ctx)()

	for _, request := range r.s.leaves {
		if request.EmployeeID != employeeID || request.Status == leave.StatusRejected {
			continue
		}
		if request.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}
