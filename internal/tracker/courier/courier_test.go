package courier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

func assertNoResult(t *testing.T, result domain.SourceResult) {
	t.Helper()
	if result.Found() {
		t.Fatalf("expected no result, got service=%q events=%d", result.Service, len(result.Events))
	}
	if result.Events != nil {
		t.Fatal("no-result must carry a nil event slice")
	}
}

const bluedartPage = `<html><body>
<div id="SCAN7D123">
  <table>
    <tr><th>Location</th><th>Details</th><th>Date</th><th>Time</th></tr>
    <tr><td>Pune Hub</td><td>Shipment out for delivery</td><td>06-12-2024</td><td>08:15:00</td></tr>
    <tr><td>Mumbai Hub</td><td>Shipment arrived at hub</td><td>05-12-2024</td><td>21:40:00</td></tr>
  </table>
</div>
</body></html>`

func TestBluedart_ParsesScanTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("trackNo"); got != "7D123" {
			t.Errorf("trackNo = %q", got)
		}
		_, _ = w.Write([]byte(bluedartPage))
	}))
	defer srv.Close()

	adapter := NewBluedart(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	result := adapter.Track(context.Background(), "7D123")
	if result.Service != ServiceBluedart {
		t.Fatalf("service = %q", result.Service)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events (header row skipped), got %d", len(result.Events))
	}
	latest := result.Events[0]
	if latest.Location != "Pune Hub" || latest.Details != "Shipment out for delivery" {
		t.Errorf("latest = %+v", latest)
	}
	if latest.OccurredAt == nil || latest.OccurredAt.Day() != 6 {
		t.Errorf("latest timestamp = %v", latest.OccurredAt)
	}
	if !result.Events[0].OccurredAt.After(*result.Events[1].OccurredAt) {
		t.Error("events must stay most-recent-first")
	}
}

func TestBluedart_MissingScanDiv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="SCANOTHER"></div></body></html>`))
	}))
	defer srv.Close()

	adapter := NewBluedart(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	assertNoResult(t, adapter.Track(context.Background(), "7D123"))
}

func TestBluedart_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := NewBluedart(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	assertNoResult(t, adapter.Track(context.Background(), "7D123"))
}

func TestDTDC_ParsesMovements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`[
			{"activityType":"Delivered","origin":"PUNE","dest":"","dateWithNoSuffix":"06-12-2024","time":"10:00:00"},
			{"activityType":"In Transit","origin":"MUMBAI","dest":"PUNE","dateWithNoSuffix":"05-12-2024","time":"11:00:00"}
		]`))
	}))
	defer srv.Close()

	adapter := NewDTDC(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	result := adapter.Track(context.Background(), "D111")
	if result.Service != ServiceDTDC {
		t.Fatalf("service = %q", result.Service)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.Events[0].Location != "PUNE" {
		t.Errorf("empty dest must fall back to origin, got %q", result.Events[0].Location)
	}
	if result.Events[1].Location != "PUNE" {
		t.Errorf("dest takes precedence over origin, got %q", result.Events[1].Location)
	}
}

func TestDTDC_NoDataSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"activityType":"No Data available","origin":"","dest":"","dateWithNoSuffix":"","time":""}]`))
	}))
	defer srv.Close()

	adapter := NewDTDC(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	assertNoResult(t, adapter.Track(context.Background(), "D111"))
}

func TestDTDC_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance page</html>`))
	}))
	defer srv.Close()

	adapter := NewDTDC(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	assertNoResult(t, adapter.Track(context.Background(), "D111"))
}

func TestEcomExpress_ReversesOldestFirstScans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"shipment_status": [
					{"service_center_name":"DELHI","status_name":"Shipment booked","added_on":"2024-12-04 09:00:00"},
					{"service_center_name":"PUNE","status_name":"Out for delivery","added_on":"2024-12-06 08:00:00"}
				],
				"expected_delivery_date": "2024-12-06 18:00:00"
			}
		}`))
	}))
	defer srv.Close()

	adapter := NewEcomExpress(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	result := adapter.Track(context.Background(), "E555")
	if result.Service != ServiceEcomExpress {
		t.Fatalf("service = %q", result.Service)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.Events[0].Details != "Out for delivery" {
		t.Errorf("scans must be flipped to most-recent-first, latest = %q", result.Events[0].Details)
	}
	if result.Events[0].OccurredAt == nil || result.Events[0].OccurredAt.Hour() != 8 {
		t.Errorf("added_on date and time not joined: %v", result.Events[0].OccurredAt)
	}
	if result.EstimatedDelivery == nil || result.EstimatedDelivery.Hour() != 18 {
		t.Errorf("expected delivery = %v", result.EstimatedDelivery)
	}
}

func TestEcomExpress_NotFoundSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"AWB_NOT_FOUND","result":{"shipment_status":[]}}`))
	}))
	defer srv.Close()

	adapter := NewEcomExpress(time.Second, zerolog.Nop())
	adapter.baseURL = srv.URL

	assertNoResult(t, adapter.Track(context.Background(), "E555"))
}

func TestParseChatMovements(t *testing.T) {
	raw := `Here is your consignment status: [{"activityType":"Delivered","origin":"PUNE","dest":"PUNE","dateWithNoSuffix":"06-12-2024","time":"10:00:00"}] anything else?`
	movements, err := parseChatMovements(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(movements) != 1 || movements[0].ActivityType != "Delivered" {
		t.Fatalf("movements = %+v", movements)
	}

	if _, err := parseChatMovements("sorry, I did not understand that"); err == nil {
		t.Fatal("expected an error when the reply has no json array")
	}
}

func TestMovementsToResult_Empty(t *testing.T) {
	assertNoResult(t, movementsToResult(nil))
}
