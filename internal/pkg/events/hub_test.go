package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("leave.approved")
	defer cleanup()

	assert.Equal(t, 1, hub.SubscriberCount("leave.approved"))

	require.NoError(t, hub.Publish(context.Background(), Event{Topic: "leave.rejected", Key: "e1"}))
	require.NoError(t, hub.Publish(context.Background(), Event{Topic: "leave.approved", Key: "e1"}))

	select {
	case ev := <-ch:
		assert.Equal(t, "leave.approved", ev.Topic)
		assert.Equal(t, "e1", ev.Key)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestHubCleanup(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("leave.approved")
	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("leave.approved"))

	// Publishing with no subscribers is a no-op.
	assert.NoError(t, hub.Publish(context.Background(), Event{Topic: "leave.approved"}))
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("t")
	defer cleanup()

	for i := 0; i < 20; i++ {
		require.NoError(t, hub.Publish(context.Background(), Event{Topic: "t"}))
	}
	assert.Len(t, ch, cap(ch))
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestMulti(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("t")
	defer cleanup()

	boom := errors.New("boom")
	err := Multi{failingPublisher{err: boom}, hub}.Publish(context.Background(), Event{Topic: "t"})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, ch, 1)
}

func TestNATSSubject(t *testing.T) {
	assert.Equal(t, "hris.leave.approved", NewNATSPublisher(nil, "hris").Subject("leave.approved"))
	assert.Equal(t, "leave.approved", NewNATSPublisher(nil, "").Subject("leave.approved"))
}
