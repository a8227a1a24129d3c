package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	s, err := NewStore(filepath.Join(t.TempDir(), "audit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, Event{
		EventType: EventPresignIssued,
		ObjectKey: "/a/b.png",
		TraceID:   "trace-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	s.Record(ctx, Event{
		EventType: EventObjectDeleted,
		ObjectKey: "/a/b.png",
		TraceID:   "trace-2",
	})

	events, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, EventObjectDeleted, events[0].EventType)
	assert.Equal(t, "trace-2", events[0].TraceID)
	assert.True(t, events[0].ExpiresAt.IsZero())

	assert.Equal(t, EventPresignIssued, events[1].EventType)
	assert.False(t, events[1].ExpiresAt.IsZero())
}

func TestRecent_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, Event{EventType: EventPostPolicyIssued, ObjectKey: "uploads/"})
	}

	events, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestRecent_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	events, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
