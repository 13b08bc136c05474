package normalize

import (
	"testing"
	"time"
)

func TestEvents_DropsEmptyDetails(t *testing.T) {
	records := []Record{
		{Location: "Mumbai", Details: "In Transit", Date: "2024-12-05", Time: "11:03:59"},
		{Location: "Mumbai", Details: "   "},
		{Location: "Delhi", Details: "Picked Up", Date: "2024-12-04", Time: "09:00:00"},
	}

	events := Events(records, false)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Details != "In Transit" || events[1].Details != "Picked Up" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestEvents_ConcatenatesDateAndTime(t *testing.T) {
	events := Events([]Record{
		{Details: "In Transit", Date: "2024-12-05", Time: "11:03:59"},
	}, false)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want := time.Date(2024, 12, 5, 11, 3, 59, 0, time.UTC)
	if events[0].OccurredAt == nil || !events[0].OccurredAt.Equal(want) {
		t.Errorf("occurred at = %v, want %v", events[0].OccurredAt, want)
	}
}

func TestEvents_ReversesOldestFirstInput(t *testing.T) {
	records := []Record{
		{Details: "Picked Up", Timestamp: "2024-12-04 09:00:00"},
		{Details: "In Transit", Timestamp: "2024-12-05 11:00:00"},
		{Details: "Out for Delivery", Timestamp: "2024-12-06 08:00:00"},
	}

	events := Events(records, true)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Details != "Out for Delivery" {
		t.Errorf("index 0 should be the latest event, got %q", events[0].Details)
	}
	if events[2].Details != "Picked Up" {
		t.Errorf("last index should be the oldest event, got %q", events[2].Details)
	}
}

func TestEvents_UnparseableTimestampIsRetained(t *testing.T) {
	events := Events([]Record{
		{Details: "In Transit", Date: "soonish"},
	}, false)

	if len(events) != 1 {
		t.Fatalf("event with unknown timestamp must be retained, got %d events", len(events))
	}
	if events[0].OccurredAt != nil {
		t.Errorf("expected nil occurred at, got %v", events[0].OccurredAt)
	}
}
