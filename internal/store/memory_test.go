package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_IdeasOrderedByTimestampThenID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.AddIdea(ctx, "s1", models.Idea{Name: "late", Content: "later idea", Timestamp: 300})
	require.NoError(t, err)
	_, err = m.AddIdea(ctx, "s1", models.Idea{Name: "early", Content: "first idea", Timestamp: 100})
	require.NoError(t, err)
	_, err = m.AddIdea(ctx, "s1", models.Idea{Name: "tie", Content: "same time", Timestamp: 100})
	require.NoError(t, err)

	ideas, err := m.ListIdeas(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, int64(100), ideas[0].Timestamp)
	assert.Equal(t, int64(100), ideas[1].Timestamp)
	assert.Less(t, ideas[0].ID, ideas[1].ID)
	assert.Equal(t, "late", ideas[2].Name)
}

func TestMemory_SubscribeIdeasDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.AddIdea(ctx, "s1", models.Idea{Name: "a", Content: "existing", Timestamp: 1})
	require.NoError(t, err)

	var snapshots [][]models.Idea
	unsub, err := m.SubscribeIdeas(ctx, "s1", func(ideas []models.Idea) {
		snapshots = append(snapshots, ideas)
	})
	require.NoError(t, err)

	_, err = m.AddIdea(ctx, "s1", models.Idea{Name: "b", Content: "second", Timestamp: 2})
	require.NoError(t, err)
	require.NoError(t, m.DeleteIdeas(ctx, "s1"))

	unsub()
	unsub()
	_, err = m.AddIdea(ctx, "s1", models.Idea{Name: "c", Content: "ignored", Timestamp: 3})
	require.NoError(t, err)

	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0], 1)
	assert.Len(t, snapshots[1], 2)
	assert.Empty(t, snapshots[2])
}

func TestMemory_SubscribeStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMemory()

	calls := make(chan models.Session, 8)
	_, err := m.SubscribeSession(ctx, "s1", func(s models.Session) { calls <- s })
	require.NoError(t, err)

	require.NoError(t, m.UpdateSession(context.Background(), "s1", models.SessionPatch{IsActive: models.Bool(true)}))
	assert.True(t, (<-calls).IsActive)

	cancel()
	assert.Eventually(t, func() bool {
		_ = m.UpdateSession(context.Background(), "s1", models.SessionPatch{Context: models.String("x")})
		select {
		case <-calls:
			return false
		default:
			return true
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemory_UpdateSessionMerges(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.UpdateSession(ctx, "s1", models.SessionPatch{
		IsActive: models.Bool(true),
		Context:  models.String("Hoe besparen we energie?"),
	}))
	require.NoError(t, m.UpdateSession(ctx, "s1", models.SessionPatch{SelectedManualIdeaID: models.String("idea-1")}))

	s, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, "Hoe besparen we energie?", s.Context)
	assert.Equal(t, "idea-1", s.SelectedManualIdeaID)

	require.NoError(t, m.UpdateSession(ctx, "s1", models.SessionPatch{SelectedManualIdeaID: models.String("")}))
	s, err = m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.SelectedManualIdeaID)
	assert.Equal(t, "Hoe besparen we energie?", s.Context)
}

func TestMemory_AssignCodeReleasesPrevious(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AssignCode(ctx, "s1", "abc123"))
	id, err := m.LookupCode(ctx, " ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	assert.ErrorIs(t, m.AssignCode(ctx, "s2", "ABC123"), ErrCodeTaken)

	require.NoError(t, m.AssignCode(ctx, "s1", "XYZ789"))
	_, err = m.LookupCode(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.AssignCode(ctx, "s2", "ABC123"))
	s, err := m.GetSession(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", s.AccessCode)
}

func TestMemory_ReportsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		_, err := m.SaveReport(ctx, &models.Report{
			SessionID:   "s1",
			Name:        name,
			GeneratedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	reports, err := m.ListReports(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "third", reports[0].Name)
	assert.Equal(t, "first", reports[2].Name)
}

func TestMemory_FailInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("unavailable")

	m.Fail("DeleteIdeas", boom)
	err := m.DeleteIdeas(ctx, "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "DeleteIdeas", se.Op)

	m.Fail("DeleteIdeas", nil)
	assert.NoError(t, m.DeleteIdeas(ctx, "s1"))
}
