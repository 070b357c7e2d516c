package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// SlotCache is a short-TTL Redis cache over computed slot lists. The core
// contract regenerates slots per call; this cache sits in front of it and is
// invalidated whenever a webhook or sync run mutates a calendar's events.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func slotKey(calendarID, subCalendarID string, duration time.Duration) string {
	return fmt.Sprintf("slots:%s:%s:%d", calendarID, subCalendarID, int(duration.Minutes()))
}

// Get returns the cached slot list, or false on miss. A nil cache always
// misses.
func (c *SlotCache) Get(ctx context.Context, calendarID, subCalendarID string, duration time.Duration) ([]models.Slot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, slotKey(calendarID, subCalendarID, duration)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []models.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores the slot list under the cache TTL. Failures are logged only;
// the computation result is still returned to the caller.
func (c *SlotCache) Set(ctx context.Context, calendarID, subCalendarID string, duration time.Duration, slots []models.Slot) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, slotKey(calendarID, subCalendarID, duration), raw, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("slot cache set failed", zap.Error(err))
	}
}

// InvalidateCalendar drops every cached slot list for a calendar. Called
// after any event mutation (booking commit, webhook dispatch, sync run).
func (c *SlotCache) InvalidateCalendar(ctx context.Context, calendarID string) {
	if c == nil || c.client == nil {
		return
	}
	pattern := fmt.Sprintf("slots:%s:*", calendarID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			utils.GetLogger().Warn("slot cache invalidation failed",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		utils.GetLogger().Warn("slot cache scan failed", zap.Error(err))
	}
}
