// Package memory is an in-process storage adapter with the same semantics as
// the PostgreSQL repositories. It backs tests and single-node deployments
// started with STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/google/uuid"
)

// Store holds every table. A transaction holds mu for its whole duration,
// so transactions are serialisable and see no interleaved writes.
type Store struct {
	mu    sync.Mutex
	clock clock.Clock

	attendances map[string]attendance.Attendance
	// byDay indexes attendances by employee and date, the unique key.
	byDay       map[dayKey]string
	adjustments []adjustment.Adjustment
	leaves      map[string]leave.LeaveRequest
	profiles    map[string]employee.Profile
}

type dayKey struct {
	employeeID string
	date       string
}

func keyOf(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: date.Format("2006-01-02")}
}

type txKey struct{ store *Store }

func NewStore(clk clock.Clock) *Store {
	return &Store{
		clock:       clk,
		attendances: make(map[string]attendance.Attendance),
		byDay:       make(map[dayKey]string),
		leaves:      make(map[string]leave.LeaveRequest),
		profiles:    make(map[string]employee.Profile),
	}
}

// WithinTransaction implements database.Transactor. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(saved)
			panic(p)
		}
		if err != nil {
			s.restore(saved)
		}
	}()

	return fn(context.WithValue(ctx, txKey{s}, true))
}

func (s *Store) inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{s}).(bool)
	return v
}

// lock takes the store lock unless ctx already runs inside a transaction
// that holds it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type state struct {
	attendances map[string]attendance.Attendance
	byDay       map[dayKey]string
	adjustments int
	leaves      map[string]leave.LeaveRequest
}

// Stored values are replaced, never mutated in place, so shallow map copies
// are enough to roll back.
func (s *Store) snapshot() state {
	return state{
		attendances: maps.Clone(s.attendances),
		byDay:       maps.Clone(s.byDay),
		adjustments: len(s.adjustments),
		leaves:      maps.Clone(s.leaves),
	}
}

func (s *Store) restore(st state) {
	s.attendances = st.attendances
	s.byDay = st.byDay
	s.adjustments = s.adjustments[:st.adjustments]
	s.leaves = st.leaves
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// paginate returns the [offset, offset+limit) window of items. A
// non-positive limit returns everything from offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
