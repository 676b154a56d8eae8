package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfahadasghar/flow-fund/internal/events/domain"
)

func newTestPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewPublisher(client), mr
}

func TestPublisher_Publish(t *testing.T) {
	p, mr := newTestPublisher(t)
	ctx := context.Background()

	payload := map[string]any{"donation_id": 1, "donor": "0xabc"}
	require.NoError(t, p.Publish(ctx, domain.KindDonationMade, payload))

	items, err := mr.List(recentListKey)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var e domain.Event
	require.NoError(t, json.Unmarshal([]byte(items[0]), &e))
	assert.Equal(t, domain.KindDonationMade, e.Kind)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(e.Payload, &decoded))
	assert.Equal(t, "0xabc", decoded["donor"])

	assert.True(t, mr.TTL(recentListKey) > 0)
}

func TestPublisher_RecentCached(t *testing.T) {
	p, _ := newTestPublisher(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(ctx, domain.KindTransfer, map[string]any{"seq": i}))
	}

	events, err := p.RecentCached(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	var first map[string]any
	require.NoError(t, json.Unmarshal(events[0].Payload, &first))
	assert.Equal(t, float64(4), first["seq"])
}

func TestPublisher_RecentListCapped(t *testing.T) {
	p, mr := newTestPublisher(t)
	ctx := context.Background()

	for i := 0; i < recentListSize+25; i++ {
		require.NoError(t, p.Publish(ctx, domain.KindTransfer, map[string]any{"seq": fmt.Sprint(i)}))
	}

	items, err := mr.List(recentListKey)
	require.NoError(t, err)
	assert.Len(t, items, recentListSize)
}
