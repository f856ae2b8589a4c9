package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/tg"
)

func TestMessageQueue_Defaults(t *testing.T) {
	q := resilience.NewMessageQueue(resilience.QueueConfig{})
	defer q.Close()

	cfg := q.Config()
	assert.Equal(t, 29, cfg.AllBurstLimit)
	assert.Equal(t, 1024*time.Millisecond, cfg.AllTimeLimit)
	assert.Equal(t, 20, cfg.GroupBurstLimit)
	assert.Equal(t, time.Minute, cfg.GroupTimeLimit)
}

func TestMessageQueue_BurstPassesImmediately(t *testing.T) {
	q := resilience.NewMessageQueue(resilience.DefaultQueueConfig())
	defer q.Close()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Wait(context.Background(), 42, false))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMessageQueue_GroupLimiterBlocksAfterBurst(t *testing.T) {
	q := resilience.NewMessageQueue(resilience.QueueConfig{
		GroupBurstLimit: 1,
		GroupTimeLimit:  time.Hour,
	})
	defer q.Close()

	require.NoError(t, q.Wait(context.Background(), -100, true))
	assert.Equal(t, 1, q.GroupCount())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, q.Wait(ctx, -100, true))

	// Other groups have their own budget.
	require.NoError(t, q.Wait(context.Background(), -200, true))
	assert.Equal(t, 2, q.GroupCount())
}

func TestMessageQueue_MaxGroupsEvicts(t *testing.T) {
	q := resilience.NewMessageQueue(resilience.QueueConfig{MaxGroups: 2})
	defer q.Close()

	for _, id := range []int64{-1, -2, -3} {
		require.NoError(t, q.Wait(context.Background(), id, true))
	}
	assert.Equal(t, 2, q.GroupCount())
}

func TestMessageQueue_Closed(t *testing.T) {
	q := resilience.NewMessageQueue(resilience.DefaultQueueConfig())
	q.Close()
	q.Close()

	err := q.Wait(context.Background(), 1, false)
	assert.ErrorIs(t, err, tg.ErrClosed)
}
