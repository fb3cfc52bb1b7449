package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
)

type profileRepository struct {
	s *Store
}

func NewProfileRepository(s *Store) employee.ProfileRepository {
	return &profileRepository{s: s}
}

// PutProfile adds or replaces a profile. The HR directory owns profiles, so
// this is only used to seed the store.
func (s *Store) PutProfile(p employee.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

// GetByID implements employee.ProfileRepository.
func (r *profileRepository) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.profiles[id]
	if !ok {
		return employee.Profile{}, employee.ErrEmployeeNotFound
	}
	return p, nil
}

// GetByIDs implements employee.ProfileRepository.
func (r *profileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Profile, error) {
	defer r.s.lock(ctx)()

	found := make(map[string]employee.Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

// ListEmployedOn implements employee.ProfileRepository.
func (r *profileRepository) ListEmployedOn(ctx context.Context, date time.Time) ([]employee.Profile, error) {
	defer r.s.lock(ctx)()

	profiles := make([]employee.Profile, 0)
	for _, p := range r.s.profiles {
		if p.IsEmployedOn(date) {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}
