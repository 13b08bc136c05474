package domain

import "time"

// TrackingEvent is the canonical, courier-independent event record produced
// by the normalizer. OccurredAt is nil when no known timestamp format matched;
// such events are kept but cannot be ordered against other nil-timestamp ones.
type TrackingEvent struct {
	Location   string     `json:"location,omitempty"`
	Details    string     `json:"details"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// SameMoment compares two optional timestamps, treating nil as equal to nil.
func SameMoment(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// SourceResult is the tagged outcome of one courier adapter call.
// A nil Events slice means "no data / not found / adapter failed"; an empty
// non-nil slice means the shipment exists but has no scans yet. A successful
// source always names itself: Events == nil ⇔ Service == "".
type SourceResult struct {
	Service           string          `json:"service,omitempty"`
	Events            []TrackingEvent `json:"events,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
}

// NoResult is the canonical failed outcome.
func NoResult() SourceResult {
	return SourceResult{}
}

// Found reports whether the adapter located the shipment.
func (r SourceResult) Found() bool {
	return r.Events != nil
}

// Latest returns the most recent event, or nil when there are none.
func (r SourceResult) Latest() *TrackingEvent {
	if len(r.Events) == 0 {
		return nil
	}
	return &r.Events[0]
}

// PersistedTrackingEvent is one stored event row. The 4-tuple
// (PackageID, Location, Details, OccurredAt) is the de-duplication identity:
// identical tuples are never inserted twice across repeated polls.
type PersistedTrackingEvent struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	PackageID  string     `json:"package_id" bson:"package_id"`
	Location   string     `json:"location,omitempty" bson:"location"`
	Details    string     `json:"details" bson:"details"`
	OccurredAt *time.Time `json:"occurred_at,omitempty" bson:"occurred_at"`
	RecordedAt time.Time  `json:"recorded_at" bson:"recorded_at"`
}
