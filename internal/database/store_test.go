package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a real Postgres when TEST_DATABASE_URL is set.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, url, PoolSettings{MaxConns: 8, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.CreateTables(ctx))
	return NewStore(db)
}

func TestStore_SessionPatchAndIdeas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, s.UpdateSession(ctx, id, models.SessionPatch{
		IsActive:             models.Bool(true),
		Context:              models.String("Hoe besparen we energie?"),
		SelectedManualIdeaID: models.String("x"),
	}))
	require.NoError(t, s.UpdateSession(ctx, id, models.SessionPatch{SelectedManualIdeaID: models.String("")}))

	session, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, session.IsActive)
	assert.Equal(t, "Hoe besparen we energie?", session.Context)
	assert.Empty(t, session.SelectedManualIdeaID)

	_, err = s.AddIdea(ctx, id, models.Idea{Name: "Ann", Content: "Zonnepanelen op het dak", Timestamp: 2})
	require.NoError(t, err)
	_, err = s.AddIdea(ctx, id, models.Idea{Name: "Bo", Content: "Slimme thermostaten", Timestamp: 1})
	require.NoError(t, err)

	ideas, err := s.ListIdeas(ctx, id)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Bo", ideas[0].Name)

	require.NoError(t, s.DeleteIdeas(ctx, id))
	ideas, err = s.ListIdeas(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestStore_SubscribeIdeasReceivesInserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()
	_, err := s.EnsureSession(ctx, id)
	require.NoError(t, err)

	snapshots := make(chan []models.Idea, 8)
	unsub, err := s.SubscribeIdeas(ctx, id, func(ideas []models.Idea) { snapshots <- ideas })
	require.NoError(t, err)
	defer unsub()

	assert.Empty(t, <-snapshots)

	_, err = s.AddIdea(ctx, id, models.Idea{Name: "Cid", Content: "Led verlichting overal"})
	require.NoError(t, err)

	select {
	case ideas := <-snapshots:
		require.Len(t, ideas, 1)
		assert.Equal(t, "Cid", ideas[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received")
	}
}

func TestStore_CodesAreExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := "test-" + uuid.New().String()
	b := "test-" + uuid.New().String()
	code := uuid.New().String()[:8]

	require.NoError(t, s.AssignCode(ctx, a, code))
	assert.ErrorIs(t, s.AssignCode(ctx, b, code), store.ErrCodeTaken)

	owner, err := s.LookupCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, a, owner)
}
