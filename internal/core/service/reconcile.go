package service

import (
	"context"
	"fmt"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// reconcileOutcome is the decision made for one poll of one package.
type reconcileOutcome struct {
	// changed is true when the latest fetched event differs from the most
	// recently persisted one (or no prior event exists).
	changed bool
	// newEvents are the fetched events whose 4-tuple is not yet stored.
	newEvents []domain.TrackingEvent
	// terminal is true when the latest event's details match the delivered
	// vocabulary. Checked on every poll, independent of changed.
	terminal bool
}

// reconcile compares a freshly aggregated result against the persisted
// history. A none or empty result is a no-op, not an error. Change detection
// compares only the latest fetched event against the latest persisted one:
// different details, or a different occurred-at (nil equals nil), means
// changed. Only when something changed are the fetched events de-duplicated
// against the stored 4-tuples.
func reconcile(
	ctx context.Context,
	events ports.EventRepository,
	pkg *domain.TrackedPackage,
	result domain.SourceResult,
) (reconcileOutcome, error) {
	latest := result.Latest()
	if latest == nil {
		return reconcileOutcome{}, nil
	}

	outcome := reconcileOutcome{terminal: domain.IsDeliveredPhrase(latest.Details)}

	prior, err := events.LatestByPackage(ctx, pkg.ID)
	if err != nil {
		return reconcileOutcome{}, fmt.Errorf("load latest event: %w", err)
	}

	outcome.changed = prior == nil ||
		prior.Details != latest.Details ||
		!domain.SameMoment(prior.OccurredAt, latest.OccurredAt)
	if !outcome.changed {
		return outcome, nil
	}

	// The full event list is re-fetched on every poll; only tuples not seen
	// before are queued for persistence.
	for _, event := range result.Events {
		exists, err := events.Exists(ctx, pkg.ID, event.Location, event.Details, event.OccurredAt)
		if err != nil {
			return reconcileOutcome{}, fmt.Errorf("check event tuple: %w", err)
		}
		if !exists {
			outcome.newEvents = append(outcome.newEvents, event)
		}
	}
	return outcome, nil
}
