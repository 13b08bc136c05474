package courier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/tracker/normalize"
)

const ServiceBluedart = "bluedart"

const bluedartBaseURL = "https://www.bluedart.com"

// Bluedart scrapes the third-party tracking result page. Scan rows live in a
// table inside <div id="SCAN<awb>">, four cells per row: location, details,
// date, time. The page lists scans most-recent-first already.
type Bluedart struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewBluedart(timeout time.Duration, log zerolog.Logger) *Bluedart {
	return &Bluedart{
		client:  newHTTPClient(timeout, false),
		baseURL: bluedartBaseURL,
		log:     log,
	}
}

func (b *Bluedart) Service() string { return ServiceBluedart }

func (b *Bluedart) Track(ctx context.Context, trackingNumber string) domain.SourceResult {
	url := fmt.Sprintf("%s/trackdartresultthirdparty?trackFor=0&trackNo=%s", b.baseURL, trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NoResult()
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := b.client.Do(req)
	if err != nil {
		b.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("bluedart fetch failed")
		return domain.NoResult()
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b.log.Error().Int("status", res.StatusCode).Str("tracking_number", trackingNumber).Msg("bluedart non-200 response")
		return domain.NoResult()
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		b.log.Error().Err(err).Msg("bluedart html parse failed")
		return domain.NoResult()
	}

	scans := doc.Find(fmt.Sprintf("div#SCAN%s", trackingNumber))
	if scans.Length() == 0 {
		b.log.Debug().Str("tracking_number", trackingNumber).Msg("bluedart scan table missing")
		return domain.NoResult()
	}

	var records []normalize.Record
	scans.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 4 {
			return
		}
		records = append(records, normalize.Record{
			Location: cells.Eq(0).Text(),
			Details:  cells.Eq(1).Text(),
			Date:     cells.Eq(2).Text(),
			Time:     cells.Eq(3).Text(),
		})
	})
	if len(records) == 0 {
		return domain.NoResult()
	}

	return domain.SourceResult{
		Service: ServiceBluedart,
		Events:  normalize.Events(records, false),
	}
}
