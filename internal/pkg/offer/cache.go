package offer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "offers:cache:"

// Fingerprint identifies a cacheable search+source pair.
type Fingerprint string

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cache is the advisory response cache: any store failure degrades to a
// miss, never to a request failure.
type Cache struct {
	redis RedisClient
}

func NewCache(redisClient RedisClient) *Cache {
	return &Cache{redis: redisClient}
}

// NewFingerprint hashes the fields that define search identity. Departure
// and return dates participate at day granularity; request ids and
// timestamps are deliberately excluded so identical searches collide.
func NewFingerprint(criteria dto.SearchCriteria, source string) Fingerprint {
	departure := dayString(criteria.DepartureDate)

	returnDay := ""
	if criteria.ReturnDate != nil {
		returnDay = dayString(*criteria.ReturnDate)
	}

	payload := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d|%s|%t|%s",
		criteria.Origin,
		criteria.Destination,
		departure,
		returnDay,
		criteria.Passengers.Adults,
		criteria.Passengers.Children,
		criteria.Passengers.Infants,
		criteria.CabinClass,
		criteria.FlexibleDates,
		source,
	)

	sum := sha256.Sum256([]byte(payload))

	return Fingerprint(hex.EncodeToString(sum[:]))
}

func dayString(value string) string {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Format("2006-01-02")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format("2006-01-02")
	}

	// Unparseable dates are rejected at validation; hash raw as a fallback.
	return value
}

// Get returns the cached offer sequence or a miss.
func (c *Cache) Get(ctx context.Context, fp Fingerprint) ([]dto.Offer, bool) {
	data, err := c.redis.Get(ctx, cachePrefix+string(fp)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "offer cache unavailable, treating as miss",
				slog.String("error", err.Error()))
		}

		return nil, false
	}

	var offers []dto.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		slog.WarnContext(ctx, "failed to unmarshal cached offers, treating as miss",
			slog.String("error", err.Error()))

		return nil, false
	}

	return offers, true
}

// Put stores the offer sequence with a TTL.
func (c *Cache) Put(ctx context.Context, fp Fingerprint, offers []dto.Offer, ttl time.Duration) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("failed to marshal offers: %w", err)
	}

	if err := c.redis.Set(ctx, cachePrefix+string(fp), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set offers: %w", err)
	}

	return nil
}

// InvalidateRoute removes cached entries whose itinerary touches the route
// pair. Returns the number of removed entries.
func (c *Cache) InvalidateRoute(ctx context.Context, origin, destination string) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := c.redis.Scan(ctx, cursor, cachePrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		for _, key := range keys {
			data, err := c.redis.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}

			var offers []dto.Offer
			if err := json.Unmarshal(data, &offers); err != nil {
				continue
			}

			for _, o := range offers {
				if o.TouchesRoute(origin, destination) {
					if err := c.redis.Del(ctx, key).Err(); err == nil {
						removed++
					}

					break
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}
