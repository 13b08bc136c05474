package redis

import (
	"testing"
	"time"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

func TestResultCodec_RoundTrip(t *testing.T) {
	occurred := time.Date(2024, 12, 5, 11, 0, 0, 0, time.UTC)
	eta := time.Date(2024, 12, 6, 18, 0, 0, 0, time.UTC)
	in := domain.SourceResult{
		Service: "courierB",
		Events: []domain.TrackingEvent{
			{Location: "Mumbai", Details: "In Transit", OccurredAt: &occurred},
		},
		EstimatedDelivery: &eta,
	}

	raw, err := encodeResult(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeResult(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.Service != "courierB" || len(out.Events) != 1 {
		t.Fatalf("round trip lost data: %+v", out)
	}
	if out.Events[0].OccurredAt == nil || !out.Events[0].OccurredAt.Equal(occurred) {
		t.Errorf("occurred_at = %v", out.Events[0].OccurredAt)
	}
	if out.EstimatedDelivery == nil || !out.EstimatedDelivery.Equal(eta) {
		t.Errorf("estimated_delivery = %v", out.EstimatedDelivery)
	}
}

func TestResultCodec_KeepsEmptyEventList(t *testing.T) {
	// Found-but-no-scans: the empty non-nil slice must survive the cache,
	// otherwise the entry reads back as a miss.
	in := domain.SourceResult{Service: "courierB", Events: []domain.TrackingEvent{}}

	raw, err := encodeResult(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeResult(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !out.Found() {
		t.Fatal("found-with-zero-scans result must still count as found")
	}
	if out.Events == nil || len(out.Events) != 0 {
		t.Fatalf("events = %#v, want empty non-nil slice", out.Events)
	}
}

func TestResultCodec_CorruptEntry(t *testing.T) {
	if _, err := decodeResult([]byte("{not json")); err == nil {
		t.Fatal("expected an error for a corrupt entry")
	}
}
