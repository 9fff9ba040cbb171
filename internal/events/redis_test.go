package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPublisher(t *testing.T) {
	_, client := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "coach:sessions")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event, err := NewSessionEvent(TypeSessionCompleted, "s1", SessionEndedPayload{Status: session.StatusCompleted})
	require.NoError(t, err)

	publisher := NewRedisPublisher(client, "coach:sessions", logger.Discard())
	require.NoError(t, publisher.HandleEvent(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got SessionEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, TypeSessionCompleted, got.Type)
		assert.Equal(t, "s1", got.SessionID)
		assert.JSONEq(t, string(event.Payload), string(got.Payload))
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_ConnectionError(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	event, err := NewSessionEvent(TypeSessionFailed, "s1", nil)
	require.NoError(t, err)

	err = NewRedisPublisher(client, "coach:sessions", logger.Discard()).HandleEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
}
