package ports

import (
	"context"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

// Adapter is one courier source: given a tracking number it returns either a
// populated SourceResult or the none-result. Adapters never return errors;
// network failures, malformed payloads and "not found" sentinels all degrade
// to domain.NoResult() inside the adapter.
type Adapter interface {
	// Service is the stable identifier persisted on packages won by this source.
	Service() string
	Track(ctx context.Context, trackingNumber string) domain.SourceResult
}

// Aggregator fans a tracking number out across all known couriers.
type Aggregator interface {
	// TrackAll queries lightweight sources in parallel and picks the winner in
	// fixed priority order, falling back to sequential browser-based sources
	// when none succeed.
	TrackAll(ctx context.Context, trackingNumber string) domain.SourceResult
	// TrackByService dispatches directly to one courier, bypassing fallback.
	// An unrecognized service yields the none-result.
	TrackByService(ctx context.Context, trackingNumber, service string) domain.SourceResult
}

// Notification kinds, stated by the caller so delivery accounting never has
// to guess from the message text.
const (
	NotificationUpdated   = "updated"
	NotificationDelivered = "delivered"
)

// Notifier delivers a human-readable message to the external channel.
// Failures are the implementation's problem: callers fire and forget.
type Notifier interface {
	Send(ctx context.Context, kind, message string) error
}
