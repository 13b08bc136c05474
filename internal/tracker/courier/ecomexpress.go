package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/tracker/normalize"
	"github.com/parceltrax/tracking-system/internal/tracker/timeparse"
)

const ServiceEcomExpress = "ecom_express"

const ecomBaseURL = "https://www.ecomexpress.in"

type ecomRequest struct {
	AWBField string `json:"awb_field"`
}

type ecomScan struct {
	ServiceCenterName string `json:"service_center_name"`
	StatusName        string `json:"status_name"`
	AddedOn           string `json:"added_on"`
}

type ecomResponse struct {
	Status string `json:"status"`
	Result struct {
		ShipmentStatus   []ecomScan `json:"shipment_status"`
		ExpectedDelivery string     `json:"expected_delivery_date"`
	} `json:"result"`
}

// EcomExpress calls the track-awb JSON endpoint. Scans arrive oldest-first
// and carry a combined "date time" stamp in added_on; the response also
// includes an expected delivery date when the courier has one.
type EcomExpress struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewEcomExpress(timeout time.Duration, log zerolog.Logger) *EcomExpress {
	return &EcomExpress{
		client:  newHTTPClient(timeout, false),
		baseURL: ecomBaseURL,
		log:     log,
	}
}

func (e *EcomExpress) Service() string { return ServiceEcomExpress }

func (e *EcomExpress) Track(ctx context.Context, trackingNumber string) domain.SourceResult {
	body, err := json.Marshal(ecomRequest{AWBField: trackingNumber})
	if err != nil {
		return domain.NoResult()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/track-awb", bytes.NewReader(body))
	if err != nil {
		return domain.NoResult()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", e.baseURL)
	req.Header.Set("User-Agent", userAgent)

	res, err := e.client.Do(req)
	if err != nil {
		e.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("ecom express fetch failed")
		return domain.NoResult()
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		e.log.Error().Int("status", res.StatusCode).Str("tracking_number", trackingNumber).Msg("ecom express non-200 response")
		return domain.NoResult()
	}

	var payload ecomResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		e.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("ecom express payload not valid json")
		return domain.NoResult()
	}

	if payload.Status == "AWB_NOT_FOUND" {
		return domain.NoResult()
	}

	records := make([]normalize.Record, 0, len(payload.Result.ShipmentStatus))
	for _, scan := range payload.Result.ShipmentStatus {
		date, clock, _ := strings.Cut(scan.AddedOn, " ")
		records = append(records, normalize.Record{
			Location: scan.ServiceCenterName,
			Details:  scan.StatusName,
			Date:     date,
			Time:     clock,
		})
	}
	if len(records) == 0 {
		return domain.NoResult()
	}

	return domain.SourceResult{
		Service:           ServiceEcomExpress,
		Events:            normalize.Events(records, true),
		EstimatedDelivery: timeparse.Parse(payload.Result.ExpectedDelivery),
	}
}
