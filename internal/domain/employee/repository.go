package employee

import (
	"context"
	"time"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (Profile, error)

	// GetByIDs returns the profiles found; unknown ids are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]Profile, error)

	// ListEmployedOn returns profiles of employees active on date.
	ListEmployedOn(ctx context.Context, date time.Time) ([]Profile, error)
}
