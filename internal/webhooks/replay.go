package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayPrefix = "webhook:seen:v1:"

// ReplayGuard remembers verified webhook deliveries in Redis so a replayed
// event id is acknowledged at most once. It guards only events that already
// passed signature verification; forged deliveries never reach it.
type ReplayGuard struct {
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReplayGuard constructs a guard. The TTL bounds how long delivery ids
// are remembered.
func NewReplayGuard(cache *redis.Client, ttl time.Duration, logger *slog.Logger) *ReplayGuard {
	return &ReplayGuard{cache: cache, ttl: ttl, logger: logger}
}

// FirstDelivery reports whether this provider/event pair has not been seen
// before, marking it seen as a side effect. Redis outages fail open: a
// delivery is treated as first rather than dropped.
func (g *ReplayGuard) FirstDelivery(ctx context.Context, providerName, eventID string) bool {
	if g == nil || g.cache == nil || eventID == "" {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	first, err := g.cache.SetNX(ctx, replayPrefix+providerName+":"+eventID, "1", g.ttl).Result()
	if err != nil {
		g.logger.Warn("replay guard unavailable, allowing delivery",
			slog.String("provider", providerName), slog.String("event_id", eventID), slog.Any("error", err))
		return true
	}
	return first
}
