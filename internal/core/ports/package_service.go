package ports

import (
	"context"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

// CreatePackageInput carries the data needed to start tracking a shipment.
type CreatePackageInput struct {
	TrackingNumber string
	Description    string
}

// PackageService defines the CRUD use cases exposed at the API boundary.
type PackageService interface {
	// CreatePackage registers a tracking number and kicks off an asynchronous
	// on-demand refresh. Returns domain.ErrDuplicatePackage when the number is
	// already tracked.
	CreatePackage(ctx context.Context, input CreatePackageInput) (*domain.TrackedPackage, error)
	GetPackage(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, []*domain.PersistedTrackingEvent, error)
	ListPackages(ctx context.Context, offset, limit int) ([]*domain.TrackedPackage, error)
	DeletePackage(ctx context.Context, trackingNumber string) error
}

// RefreshService drives the fetch-reconcile-persist-notify cycle.
type RefreshService interface {
	// RefreshPackage polls all sources for one package, persists what changed
	// and notifies. Returns domain.ErrNoTrackingData when every source fails.
	RefreshPackage(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, error)
	// RunScheduledRefresh polls every non-terminal package, pinned to its
	// known courier. One package's failure never aborts the batch.
	RunScheduledRefresh(ctx context.Context)
}
