package ports

import (
	"context"
	"time"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

// EventRepository persists the de-duplicated event history of a package.
type EventRepository interface {
	// Insert stores a new event row.
	Insert(ctx context.Context, e *domain.PersistedTrackingEvent) error

	// Exists reports whether the (packageID, location, details, occurredAt)
	// tuple has already been stored. A nil occurredAt matches only rows whose
	// timestamp is also unset.
	Exists(ctx context.Context, packageID, location, details string, occurredAt *time.Time) (bool, error)

	// LatestByPackage returns the most recent stored event for a package,
	// ordered by occurred_at descending, or nil when none exist.
	LatestByPackage(ctx context.Context, packageID string) (*domain.PersistedTrackingEvent, error)

	// ListByPackage returns the full stored history, most recent first.
	ListByPackage(ctx context.Context, packageID string) ([]*domain.PersistedTrackingEvent, error)
}
