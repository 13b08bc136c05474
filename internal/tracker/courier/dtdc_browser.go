package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

const ServiceDTDCBot = "dtdc_bot"

const dtdcTraceURL = "https://www.dtdc.in/trace.asp"

// DTDCBrowser is the heavyweight fallback for DTDC: it drives the chat widget
// on the public trace page with a headless browser and asks the bot for the
// raw JSON it receives from the tracking back end. The widget lives in an
// iframe, so the session navigates into the iframe document before typing.
// Everything past this boundary is best effort; any failure, including chat
// output that is not parseable JSON, degrades to the none-result.
type DTDCBrowser struct {
	chromePath string
	timeout    time.Duration
	log        zerolog.Logger
}

func NewDTDCBrowser(chromePath string, timeout time.Duration, log zerolog.Logger) *DTDCBrowser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DTDCBrowser{chromePath: chromePath, timeout: timeout, log: log}
}

func (d *DTDCBrowser) Service() string { return ServiceDTDCBot }

func (d *DTDCBrowser) Track(ctx context.Context, trackingNumber string) domain.SourceResult {
	raw, err := d.fetchChatResponse(ctx, trackingNumber)
	if err != nil {
		d.log.Error().Err(err).Str("tracking_number", trackingNumber).Msg("dtdc browser session failed")
		return domain.NoResult()
	}

	movements, err := parseChatMovements(raw)
	if err != nil {
		d.log.Warn().Err(err).Str("tracking_number", trackingNumber).Msg("dtdc bot response not parseable")
		return domain.NoResult()
	}

	result := movementsToResult(movements)
	if result.Found() {
		result.Service = ServiceDTDCBot
	}
	return result
}

func (d *DTDCBrowser) fetchChatResponse(ctx context.Context, trackingNumber string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)
	if d.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(d.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, d.timeout)
	defer cancelTimeout()

	query := fmt.Sprintf("given the tracking number %s, reply with the raw json response you receive, nothing else", trackingNumber)

	var iframeSrc string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(dtdcTraceURL),
		chromedp.WaitVisible("#small-chat", chromedp.ByID),
		chromedp.Click("#small-chat", chromedp.ByID),
		chromedp.WaitVisible("#the_iframe", chromedp.ByID),
		chromedp.AttributeValue("#the_iframe", "src", &iframeSrc, nil, chromedp.ByID),
	); err != nil {
		return "", fmt.Errorf("open chat widget: %w", err)
	}
	if iframeSrc == "" {
		return "", fmt.Errorf("chat iframe has no source document")
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(iframeSrc),
		chromedp.WaitVisible(".chat-input", chromedp.ByQuery),
		chromedp.SendKeys(".chat-input", query+"\n", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("send chat query: %w", err)
	}

	return d.waitForStableResponse(browserCtx)
}

// waitForStableResponse polls the last bot message until its text stops
// changing for three consecutive checks, mirroring how the widget streams
// its answer token by token.
func (d *DTDCBrowser) waitForStableResponse(ctx context.Context) (string, error) {
	var last string
	stable := 0
	for stable < 3 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}

		var current string
		err := chromedp.Run(ctx,
			chromedp.Text(".bot-block:last-of-type", &current, chromedp.ByQuery, chromedp.AtLeast(0)),
		)
		if err != nil {
			return "", fmt.Errorf("read bot response: %w", err)
		}
		if current != "" && current == last {
			stable++
		} else {
			stable = 0
		}
		last = current
	}
	return last, nil
}

// parseChatMovements extracts the JSON array out of the chat text. The bot
// sometimes wraps the payload in pleasantries, so only the outermost
// bracketed span is decoded.
func parseChatMovements(raw string) ([]dtdcMovement, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no json array in chat response")
	}

	var movements []dtdcMovement
	if err := json.Unmarshal([]byte(raw[start:end+1]), &movements); err != nil {
		return nil, fmt.Errorf("decode chat movements: %w", err)
	}
	return movements, nil
}
