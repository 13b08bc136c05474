// Package normalize converts adapter-local raw records into the canonical,
// most-recent-first event list every courier source must produce.
package normalize

import (
	"strings"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/tracker/timeparse"
)

// Record is the shape adapters hand over: free-text fields straight off the
// courier payload. Date and Time may arrive as separate fragments, or the
// whole timestamp may already live in Timestamp.
type Record struct {
	Location  string
	Details   string
	Date      string
	Time      string
	Timestamp string
}

// Events normalizes raw records into canonical events. Records with an empty
// status description are dropped. When oldestFirst is true the input order is
// reversed so that index 0 is always the latest event.
func Events(records []Record, oldestFirst bool) []domain.TrackingEvent {
	events := make([]domain.TrackingEvent, 0, len(records))
	for _, r := range records {
		details := strings.TrimSpace(r.Details)
		if details == "" {
			continue
		}
		events = append(events, domain.TrackingEvent{
			Location:   strings.TrimSpace(r.Location),
			Details:    details,
			OccurredAt: timeparse.Parse(r.timestampText()),
		})
	}
	if oldestFirst {
		reverse(events)
	}
	return events
}

// timestampText joins separately provided date/time fragments when no full
// timestamp is present.
func (r Record) timestampText() string {
	if r.Timestamp != "" {
		return r.Timestamp
	}
	return strings.TrimSpace(strings.TrimSpace(r.Date) + " " + strings.TrimSpace(r.Time))
}

func reverse(events []domain.TrackingEvent) {
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
}
