package itinerary

import (
	"context"
	"time"
)

// Repository defines the storage interface for activities.
type Repository interface {
	// CreateActivity adds a new activity, assigning an ID when empty.
	// Returns ErrTimeBlockOverlap if a scheduled activity overlaps another.
	CreateActivity(ctx context.Context, a *Activity) error

	// GetActivity retrieves an activity by ID. Returns nil, nil when absent.
	GetActivity(ctx context.Context, id string) (*Activity, error)

	// FindByPlaceID returns the first activity for a place, nil when absent.
	FindByPlaceID(ctx context.Context, placeID string) (*Activity, error)

	// ListActivitiesByDateRange returns scheduled activities within the
	// date range (inclusive), ordered by date and start.
	ListActivitiesByDateRange(ctx context.Context, start, end time.Time) ([]*Activity, error)

	// ListWishlist returns activities without a date.
	ListWishlist(ctx context.Context) ([]*Activity, error)

	// ListAllActivities returns every activity, scheduled ones first.
	ListAllActivities(ctx context.Context) ([]*Activity, error)

	// SetActivityDateTime moves an activity to a date and time and returns
	// the stored result. Returns ErrTimeBlockOverlap on a direct overlap.
	SetActivityDateTime(ctx context.Context, id string, date time.Time, start, end string) (*Activity, error)

	// UnscheduleActivity moves an activity back to the wishlist.
	UnscheduleActivity(ctx context.Context, id string) error

	// DeleteActivity removes an activity.
	DeleteActivity(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}
