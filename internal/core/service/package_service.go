package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/api/metrics"
	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

const maxListLimit = 100

// PackageService implements the CRUD shell over tracked packages.
type PackageService struct {
	repo    ports.PackageRepository
	events  ports.EventRepository
	refresh ports.RefreshService
	log     zerolog.Logger
}

var _ ports.PackageService = (*PackageService)(nil)

func NewPackageService(
	repo ports.PackageRepository,
	events ports.EventRepository,
	refresh ports.RefreshService,
	log zerolog.Logger,
) *PackageService {
	return &PackageService{repo: repo, events: events, refresh: refresh, log: log}
}

// CreatePackage registers a new tracking number. The courier is unknown at
// this point; the asynchronous on-demand refresh resolves it and fills in
// the first events.
func (s *PackageService) CreatePackage(ctx context.Context, input ports.CreatePackageInput) (*domain.TrackedPackage, error) {
	existing, err := s.repo.FindByTrackingNumber(ctx, input.TrackingNumber)
	if err != nil && !errors.Is(err, domain.ErrPackageNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicatePackage
	}

	now := time.Now().UTC()
	pkg := &domain.TrackedPackage{
		TrackingNumber: input.TrackingNumber,
		Description:    input.Description,
		CurrentStatus:  domain.StatusTrackingInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, pkg); err != nil {
		s.log.Error().Err(err).Str("tracking_number", input.TrackingNumber).Msg("failed to create package")
		return nil, err
	}
	metrics.PackagesCreatedTotal.Inc()
	s.log.Info().Str("tracking_number", pkg.TrackingNumber).Msg("package registered")

	// On-demand refresh runs detached from the request: the caller gets the
	// provisional record back immediately.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.refresh.RefreshPackage(ctx, pkg.TrackingNumber); err != nil {
			if errors.Is(err, domain.ErrNoTrackingData) {
				s.log.Info().Str("tracking_number", pkg.TrackingNumber).Msg("initial refresh found no courier data")
				return
			}
			s.log.Error().Err(err).Str("tracking_number", pkg.TrackingNumber).Msg("initial refresh failed")
		}
	}()

	return pkg, nil
}

func (s *PackageService) GetPackage(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, []*domain.PersistedTrackingEvent, error) {
	pkg, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.events.ListByPackage(ctx, pkg.ID)
	if err != nil {
		return nil, nil, err
	}
	return pkg, history, nil
}

func (s *PackageService) ListPackages(ctx context.Context, offset, limit int) ([]*domain.TrackedPackage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *PackageService) DeletePackage(ctx context.Context, trackingNumber string) error {
	if err := s.repo.Delete(ctx, trackingNumber); err != nil {
		return err
	}
	s.log.Info().Str("tracking_number", trackingNumber).Msg("package deleted")
	return nil
}
