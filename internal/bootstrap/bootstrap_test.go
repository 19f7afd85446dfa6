package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shubh-37/idea-processor/config"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePolicy(t *testing.T) {
	tests := []struct {
		name string
		want session.StorePolicy
	}{
		{"fail-closed", session.FailClosed},
		{"fail-open", session.FailOpen},
		{"", session.FailOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StorePolicy(tt.name))
		})
	}
}

func TestOpenStoreWithoutDatabase(t *testing.T) {
	st, closeFn, err := OpenStore(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer closeFn()
	_, ok := st.(*store.Memory)
	assert.True(t, ok)
}

func TestOpenRedisUnset(t *testing.T) {
	client, err := OpenRedis(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = OpenRedis(context.Background(), &config.Config{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestGeneratorWithoutKey(t *testing.T) {
	gen := NewGenerator(&config.Config{PrimaryModel: "gpt-4o"})
	assert.False(t, gen.Configured())

	_, err := gen.Analyze(context.Background(), "ctx", []models.Idea{{ID: "a", Content: "idee"}})
	assert.True(t, errors.Is(err, agents.ErrNotConfigured))
}

func TestSeedEvent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	hub := session.NewHub(mem, NewGenerator(&config.Config{}), SessionOptions(&config.Config{}, nil)...)
	defer hub.Close()

	SeedEvent(ctx, hub, nil)
	assert.Empty(t, hub.SessionIDs())

	ev, err := config.ParseEvent([]byte(config.ExampleEvent()))
	require.NoError(t, err)
	SeedEvent(ctx, hub, ev)

	assert.Equal(t, []string{"main"}, hub.SessionIDs())
	require.Eventually(t, func() bool {
		s, err := mem.GetSession(ctx, "main")
		return err == nil && s.DefaultContext == ev.DefaultContext
	}, time.Second, 5*time.Millisecond)
}
