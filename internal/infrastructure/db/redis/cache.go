package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
)

const defaultResultTTL = time.Minute

// ResultCache keeps recent courier results so that an on-demand refresh
// immediately followed by a scheduled one does not hit the courier twice.
// Key format: track:<service>:<tracking_number>
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewResultCache creates a ResultCache wrapping the given Redis client.
func NewResultCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &ResultCache{client: client, ttl: ttl, log: log}
}

// cachedResult is the stored encoding. Events deliberately lacks omitempty:
// a found-but-no-scans result has an empty non-nil slice, and dropping it
// would make the entry read back as a miss.
type cachedResult struct {
	Service           string                 `json:"service"`
	Events            []domain.TrackingEvent `json:"events"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty"`
}

func encodeResult(result domain.SourceResult) ([]byte, error) {
	return json.Marshal(cachedResult{
		Service:           result.Service,
		Events:            result.Events,
		EstimatedDelivery: result.EstimatedDelivery,
	})
}

func decodeResult(raw []byte) (domain.SourceResult, error) {
	var entry cachedResult
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.NoResult(), err
	}
	return domain.SourceResult{
		Service:           entry.Service,
		Events:            entry.Events,
		EstimatedDelivery: entry.EstimatedDelivery,
	}, nil
}

// Get returns a cached result for the service/number pair. Cache problems
// only cost a fresh poll, so errors are logged and reported as a miss.
func (c *ResultCache) Get(ctx context.Context, service, trackingNumber string) (domain.SourceResult, bool) {
	raw, err := c.client.Get(ctx, c.key(service, trackingNumber)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("result cache read failed")
		}
		return domain.NoResult(), false
	}

	result, err := decodeResult(raw)
	if err != nil {
		c.log.Warn().Err(err).Msg("result cache entry corrupt")
		return domain.NoResult(), false
	}
	if !result.Found() {
		return domain.NoResult(), false
	}
	return result, true
}

// Put stores a successful result under its winning service (expires after ttl).
func (c *ResultCache) Put(ctx context.Context, trackingNumber string, result domain.SourceResult) {
	if !result.Found() {
		return
	}
	raw, err := encodeResult(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(result.Service, trackingNumber), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("result cache write failed")
	}
}

func (c *ResultCache) key(service, trackingNumber string) string {
	return fmt.Sprintf("track:%s:%s", service, trackingNumber)
}
