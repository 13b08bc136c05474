package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/tracker/normalize"
)

const ServiceDTDC = "dtdc"

const dtdcBaseURL = "https://trackcom.dtdc.com"

// noDataSentinel is what the DTDC movement endpoint reports instead of an
// empty list when the consignment is unknown.
const noDataSentinel = "No Data available"

// dtdcMovement is one row of the load-movement response.
type dtdcMovement struct {
	ActivityType     string `json:"activityType"`
	Origin           string `json:"origin"`
	Dest             string `json:"dest"`
	DateWithNoSuffix string `json:"dateWithNoSuffix"`
	Time             string `json:"time"`
}

// DTDC calls the consignment movement endpoint. The host serves a broken
// certificate chain, so verification is skipped for this adapter only.
type DTDC struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewDTDC(timeout time.Duration, log zerolog.Logger) *DTDC {
	return &DTDC{
		client:  newHTTPClient(timeout, true),
		baseURL: dtdcBaseURL,
		log:     log,
	}
}

func (d *DTDC) Service() string { return ServiceDTDC }

func (d *DTDC) Track(ctx context.Context, trackingNumber string) domain.SourceResult {
	url := fmt.Sprintf("%s/ctbs-tracking/customerInterface.tr?submitName=getLoadMovementDetails&cnNo=%s", d.baseURL, trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return domain.NoResult()
	}
	req.Header.Set("Accept", "text/javascript, text/html, application/xml, text/xml, */*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Origin", d.baseURL)
	req.Header.Set("Referer", fmt.Sprintf("%s/ctbs-tracking/customerInterface.tr?submitName=showCITrackingDetails&cnNo=%s&cType=Consignment", d.baseURL, trackingNumber))
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	res, err := d.client.Do(req)
	if err != nil {
		d.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("dtdc fetch failed")
		return domain.NoResult()
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		d.log.Error().Int("status", res.StatusCode).Str("tracking_number", trackingNumber).Msg("dtdc non-200 response")
		return domain.NoResult()
	}

	var movements []dtdcMovement
	if err := json.NewDecoder(res.Body).Decode(&movements); err != nil {
		d.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("dtdc payload not valid json")
		return domain.NoResult()
	}

	return movementsToResult(movements)
}

// movementsToResult is shared with the browser-based fallback, which receives
// the same record shape out of the chat widget.
func movementsToResult(movements []dtdcMovement) domain.SourceResult {
	records := make([]normalize.Record, 0, len(movements))
	for _, m := range movements {
		if m.ActivityType == noDataSentinel {
			return domain.NoResult()
		}
		location := m.Dest
		if location == "" {
			location = m.Origin
		}
		records = append(records, normalize.Record{
			Location: location,
			Details:  m.ActivityType,
			Date:     m.DateWithNoSuffix,
			Time:     m.Time,
		})
	}
	if len(records) == 0 {
		return domain.NoResult()
	}
	return domain.SourceResult{
		Service: ServiceDTDC,
		Events:  normalize.Events(records, false),
	}
}
