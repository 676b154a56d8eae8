package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mfahadasghar/flow-fund/internal/events/domain"
)

const (
	channelPrefix  = "fund:events:"        // Pub/Sub channel per kind: fund:events:{kind}
	recentListKey  = "fund:events:recent"  // Capped list of the latest events for quick UI loads
	recentListSize = 200
	recentListTTL  = 24 * time.Hour
)

// Publisher pushes committed events to Redis so connected clients see
// donations land without polling Postgres. Publication happens after
// commit; Postgres stays the source of truth if Redis is down.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	envelope, err := json.Marshal(domain.Event{
		Kind:      kind,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", kind, err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, channelPrefix+kind, envelope)
	pipe.LPush(ctx, recentListKey, envelope)
	pipe.LTrim(ctx, recentListKey, 0, recentListSize-1)
	pipe.Expire(ctx, recentListKey, recentListTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s event: %w", kind, err)
	}
	return nil
}

// RecentCached returns the capped live list, newest first.
func (p *Publisher) RecentCached(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > recentListSize {
		limit = recentListSize
	}

	raw, err := p.client.LRange(ctx, recentListKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}

	out := make([]domain.Event, 0, len(raw))
	for _, item := range raw {
		var e domain.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal cached event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
