package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/models"
)

const eventCacheKeyPrefix = "athro:events:local:"

// EventCacheRepository mirrors a user's calendar events into Redis so the
// merge view can serve a degraded read when Postgres is slow or down, and so
// freshly written events appear before replication catches up.
type EventCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewEventCacheRepository constructs the repository.
func NewEventCacheRepository(client *redis.Client, logger *zap.Logger, ttl time.Duration) *EventCacheRepository {
	return &EventCacheRepository{client: client, logger: logger, ttl: ttl}
}

func eventCacheKey(userID string) string {
	return eventCacheKeyPrefix + userID
}

// ListByUser returns the mirrored events for a user. An empty slice on miss.
func (r *EventCacheRepository) ListByUser(ctx context.Context, userID string) ([]models.CachedEvent, error) {
	if r.client == nil {
		return nil, nil
	}

	raw, err := r.client.Get(ctx, eventCacheKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("event cache get: %w", err)
	}

	var events []models.CachedEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		// A corrupt mirror must never poison the merge view.
		r.logger.Warn("dropping corrupt event cache entry", zap.String("user_id", userID), zap.Error(err))
		_ = r.client.Del(ctx, eventCacheKey(userID)).Err()
		return nil, nil
	}
	return events, nil
}

// Replace overwrites the user's mirror with the given set.
func (r *EventCacheRepository) Replace(ctx context.Context, userID string, events []models.CachedEvent) error {
	if r.client == nil {
		return nil
	}
	if events == nil {
		events = []models.CachedEvent{}
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal event cache: %w", err)
	}
	if err := r.client.Set(ctx, eventCacheKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("event cache set: %w", err)
	}
	return nil
}

// Append adds one event to the user's mirror.
func (r *EventCacheRepository) Append(ctx context.Context, userID string, event models.CachedEvent) error {
	events, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			return r.Replace(ctx, userID, events)
		}
	}
	return r.Replace(ctx, userID, append(events, event))
}

// Remove drops one event from the user's mirror.
func (r *EventCacheRepository) Remove(ctx context.Context, userID, eventID string) error {
	events, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	kept := events[:0]
	for _, e := range events {
		if e.ID != eventID {
			kept = append(kept, e)
		}
	}
	return r.Replace(ctx, userID, kept)
}

// Invalidate clears the user's mirror entirely.
func (r *EventCacheRepository) Invalidate(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, eventCacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("event cache delete: %w", err)
	}
	return nil
}
