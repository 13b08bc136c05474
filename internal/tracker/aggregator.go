// Package tracker orchestrates courier adapters under a tiered fallback
// policy: lightweight HTTP sources fan out in parallel, browser-driven
// sources run one at a time only when nothing else answered.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/api/metrics"
	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// ResultCache keeps recent per-courier results so back-to-back refreshes do
// not hammer the courier sites. Implemented by the Redis layer; a nil cache
// disables caching.
type ResultCache interface {
	Get(ctx context.Context, service, trackingNumber string) (domain.SourceResult, bool)
	Put(ctx context.Context, trackingNumber string, result domain.SourceResult)
}

// Aggregator implements ports.Aggregator over two adapter tiers.
type Aggregator struct {
	// lightweight is the Tier-1 priority order. Winner selection iterates this
	// order, not completion order, so the winning source never flaps between
	// polls when several couriers recognize the same number.
	lightweight []ports.Adapter
	// heavyweight is the Tier-2 priority order, tried sequentially.
	heavyweight []ports.Adapter
	cache       ResultCache
	log         zerolog.Logger
}

var _ ports.Aggregator = (*Aggregator)(nil)

func NewAggregator(lightweight, heavyweight []ports.Adapter, cache ResultCache, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		lightweight: lightweight,
		heavyweight: heavyweight,
		cache:       cache,
		log:         log,
	}
}

// TrackAll queries every Tier-1 adapter concurrently, waits for all of them,
// then returns the first hit in priority order. Tier 2 runs only when Tier 1
// comes up empty. When every adapter fails the none-result is returned.
func (a *Aggregator) TrackAll(ctx context.Context, trackingNumber string) domain.SourceResult {
	// A recent winner is reused instead of re-polling every courier. Entries
	// are keyed by service, so the scan follows the same priority order as
	// winner selection.
	if a.cache != nil {
		for _, tier := range [][]ports.Adapter{a.lightweight, a.heavyweight} {
			for _, adapter := range tier {
				if cached, ok := a.cache.Get(ctx, adapter.Service(), trackingNumber); ok {
					return cached
				}
			}
		}
	}

	results := make([]domain.SourceResult, len(a.lightweight))

	var wg sync.WaitGroup
	for i, adapter := range a.lightweight {
		wg.Add(1)
		go func(slot int, ad ports.Adapter) {
			defer wg.Done()
			results[slot] = a.callAdapter(ctx, ad, trackingNumber)
		}(i, adapter)
	}
	wg.Wait()

	for i, result := range results {
		if result.Found() {
			a.log.Debug().
				Str("tracking_number", trackingNumber).
				Str("service", a.lightweight[i].Service()).
				Int("events", len(result.Events)).
				Msg("tier-1 source won")
			a.cachePut(ctx, trackingNumber, result)
			return result
		}
	}

	// Browser automation is resource-heavy: strictly one session at a time.
	for _, adapter := range a.heavyweight {
		result := a.callAdapter(ctx, adapter, trackingNumber)
		if result.Found() {
			a.log.Debug().
				Str("tracking_number", trackingNumber).
				Str("service", adapter.Service()).
				Msg("tier-2 source won")
			a.cachePut(ctx, trackingNumber, result)
			return result
		}
	}

	a.log.Info().Str("tracking_number", trackingNumber).Msg("all sources exhausted")
	return domain.NoResult()
}

// TrackByService dispatches directly to the adapter matching service,
// bypassing the fallback tiers. An unrecognized identifier is logged and
// yields the none-result; it is not a fatal condition.
func (a *Aggregator) TrackByService(ctx context.Context, trackingNumber, service string) domain.SourceResult {
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, service, trackingNumber); ok {
			return cached
		}
	}

	for _, adapter := range a.lightweight {
		if adapter.Service() == service {
			result := a.callAdapter(ctx, adapter, trackingNumber)
			a.cachePut(ctx, trackingNumber, result)
			return result
		}
	}
	for _, adapter := range a.heavyweight {
		if adapter.Service() == service {
			result := a.callAdapter(ctx, adapter, trackingNumber)
			a.cachePut(ctx, trackingNumber, result)
			return result
		}
	}

	a.log.Warn().Str("service", service).Str("tracking_number", trackingNumber).Msg("unknown courier service")
	return domain.NoResult()
}

func (a *Aggregator) callAdapter(ctx context.Context, adapter ports.Adapter, trackingNumber string) domain.SourceResult {
	start := time.Now()
	result := adapter.Track(ctx, trackingNumber)
	metrics.ObservePoll(adapter.Service(), result.Found(), time.Since(start))
	return result
}

func (a *Aggregator) cachePut(ctx context.Context, trackingNumber string, result domain.SourceResult) {
	if a.cache != nil && result.Found() {
		a.cache.Put(ctx, trackingNumber, result)
	}
}
