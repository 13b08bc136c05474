package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/api/metrics"
	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// RefreshService drives one fetch-reconcile-persist-notify cycle per package.
// It is called from two places: on demand right after a package is created,
// and by the scheduler for every non-terminal package.
type RefreshService struct {
	packages   ports.PackageRepository
	events     ports.EventRepository
	aggregator ports.Aggregator
	notifier   ports.Notifier
	log        zerolog.Logger
}

var _ ports.RefreshService = (*RefreshService)(nil)

func NewRefreshService(
	packages ports.PackageRepository,
	events ports.EventRepository,
	aggregator ports.Aggregator,
	notifier ports.Notifier,
	log zerolog.Logger,
) *RefreshService {
	return &RefreshService{
		packages:   packages,
		events:     events,
		aggregator: aggregator,
		notifier:   notifier,
		log:        log,
	}
}

// RefreshPackage polls every courier for one package via the full fallback
// chain. When no source has data the package is marked "Package not found"
// and domain.ErrNoTrackingData is returned for the API to surface.
func (s *RefreshService) RefreshPackage(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, error) {
	pkg, err := s.packages.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	result := s.aggregator.TrackAll(ctx, pkg.TrackingNumber)
	if !result.Found() {
		pkg.CurrentStatus = domain.StatusNotFound
		pkg.UpdatedAt = time.Now().UTC()
		if err := s.packages.Update(ctx, pkg); err != nil {
			return nil, fmt.Errorf("mark package not found: %w", err)
		}
		return pkg, domain.ErrNoTrackingData
	}

	if err := s.applyResult(ctx, pkg, result); err != nil {
		return nil, err
	}
	return pkg, nil
}

// RunScheduledRefresh polls every non-terminal package sequentially. Each
// package is pinned to its already-known courier so the winning source never
// flaps between cycles; packages whose courier is still unknown go through
// the full fallback chain again. One package's failure is logged and the
// batch moves on.
func (s *RefreshService) RunScheduledRefresh(ctx context.Context) {
	active, err := s.packages.ListActive(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled refresh: listing active packages failed")
		return
	}

	s.log.Info().Int("packages", len(active)).Msg("scheduled refresh started")
	for _, pkg := range active {
		var result domain.SourceResult
		if pkg.CourierService == "" {
			result = s.aggregator.TrackAll(ctx, pkg.TrackingNumber)
		} else {
			result = s.aggregator.TrackByService(ctx, pkg.TrackingNumber, pkg.CourierService)
		}
		if !result.Found() {
			continue
		}
		if err := s.applyResult(ctx, pkg, result); err != nil {
			s.log.Error().Err(err).Str("tracking_number", pkg.TrackingNumber).Msg("scheduled refresh: package update failed")
		}
	}
	metrics.RefreshCyclesTotal.WithLabelValues("completed").Inc()
}

// applyResult reconciles a fetched result against the stored history,
// persists whatever is new, and notifies on change and on delivery.
func (s *RefreshService) applyResult(ctx context.Context, pkg *domain.TrackedPackage, result domain.SourceResult) error {
	outcome, err := reconcile(ctx, s.events, pkg, result)
	if err != nil {
		return err
	}

	latest := result.Latest()
	if latest == nil {
		// Found the shipment but zero scans yet; nothing to reconcile.
		return nil
	}

	if outcome.changed {
		pkg.CourierService = result.Service
		pkg.CurrentStatus = latest.Details
		pkg.EstimatedDelivery = result.EstimatedDelivery
		pkg.UpdatedAt = time.Now().UTC()
		if err := s.packages.Update(ctx, pkg); err != nil {
			return fmt.Errorf("update package: %w", err)
		}

		now := time.Now().UTC()
		for _, event := range outcome.newEvents {
			row := &domain.PersistedTrackingEvent{
				PackageID:  pkg.ID,
				Location:   event.Location,
				Details:    event.Details,
				OccurredAt: event.OccurredAt,
				RecordedAt: now,
			}
			if err := s.events.Insert(ctx, row); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
			metrics.EventsPersistedTotal.Inc()
		}

		s.log.Info().
			Str("tracking_number", pkg.TrackingNumber).
			Str("service", result.Service).
			Str("status", latest.Details).
			Int("new_events", len(outcome.newEvents)).
			Msg("package updated")
		s.notify(ctx, ports.NotificationUpdated, updateMessage(pkg, latest))
	}

	if outcome.terminal {
		if !pkg.Delivered() {
			pkg.CurrentStatus = domain.StatusDelivered
			pkg.UpdatedAt = time.Now().UTC()
			if err := s.packages.Update(ctx, pkg); err != nil {
				return fmt.Errorf("mark package delivered: %w", err)
			}
		}
		s.log.Info().Str("tracking_number", pkg.TrackingNumber).Msg("package delivered")
		s.notify(ctx, ports.NotificationDelivered, fmt.Sprintf("Package %s delivered", pkg.TrackingNumber))
	}

	return nil
}

// notify is fire and forget: the notifier owns its failure handling and the
// refresh cycle never waits on, or fails because of, the channel.
func (s *RefreshService) notify(ctx context.Context, kind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, kind, message); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("notification submission failed")
	}
}

func updateMessage(pkg *domain.TrackedPackage, latest *domain.TrackingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Package %s %s %s updated to\n", pkg.TrackingNumber, pkg.CourierService, pkg.Description)
	if latest.Location != "" {
		fmt.Fprintf(&b, "location: %s\n", latest.Location)
	}
	fmt.Fprintf(&b, "details: %s\n", latest.Details)
	if latest.OccurredAt != nil {
		fmt.Fprintf(&b, "time: %s\n", latest.OccurredAt.Format("2006-01-02 15:04:05"))
	}
	if pkg.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "ETA: %s", pkg.EstimatedDelivery.Format("2006-01-02 15:04:05"))
	}
	return strings.TrimRight(b.String(), "\n")
}
