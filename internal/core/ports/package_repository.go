package ports

import (
	"context"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

// PackageRepository defines persistence operations for tracked packages.
type PackageRepository interface {
	Create(ctx context.Context, p *domain.TrackedPackage) error
	FindByID(ctx context.Context, id string) (*domain.TrackedPackage, error)
	// FindByTrackingNumber retrieves a package by its unique tracking number.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, error)
	// List returns a page of packages ordered by creation time.
	List(ctx context.Context, offset, limit int) ([]*domain.TrackedPackage, error)
	// ListActive returns every package that has not reached the terminal
	// "Delivered" state, for the scheduled batch poll.
	ListActive(ctx context.Context) ([]*domain.TrackedPackage, error)
	Update(ctx context.Context, p *domain.TrackedPackage) error
	Delete(ctx context.Context, trackingNumber string) error
}
