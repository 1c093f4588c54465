package events_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstream/records_backend/internal/core/domain"
	"github.com/finstream/records_backend/internal/events"
)

type recordingConsumer struct {
	name string
	mu   sync.Mutex
	seen []string
}

func (c *recordingConsumer) Name() string { return c.name }

func (c *recordingConsumer) Handle(ctx context.Context, event domain.RecordStored) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, event.EventID)
}

func (c *recordingConsumer) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.seen))
	copy(out, c.seen)
	return out
}

type panickingConsumer struct{}

func (c *panickingConsumer) Name() string { return "panicking" }

func (c *panickingConsumer) Handle(ctx context.Context, event domain.RecordStored) {
	panic("consumer failure")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func storedEvent(eventID string) domain.RecordStored {
	return domain.RecordStored{
		EventID: eventID,
		Record:  domain.Record{RecordID: "rec-" + eventID},
	}
}

func TestDispatcher_FansOutToAllConsumers(t *testing.T) {
	first := &recordingConsumer{name: "first"}
	second := &recordingConsumer{name: "second"}
	dispatcher := events.NewDispatcher(testLogger(), 8, first, second)

	dispatcher.Publish(context.Background(), storedEvent("evt-1"))
	dispatcher.Publish(context.Background(), storedEvent("evt-2"))
	dispatcher.Close()

	assert.Equal(t, []string{"evt-1", "evt-2"}, first.events())
	assert.Equal(t, []string{"evt-1", "evt-2"}, second.events())
}

func TestDispatcher_PanickingConsumerDoesNotBlockOthers(t *testing.T) {
	after := &recordingConsumer{name: "after"}
	dispatcher := events.NewDispatcher(testLogger(), 8, &panickingConsumer{}, after)

	dispatcher.Publish(context.Background(), storedEvent("evt-1"))
	dispatcher.Close()

	assert.Equal(t, []string{"evt-1"}, after.events())
}

func TestDispatcher_CloseDrainsPendingEvents(t *testing.T) {
	consumer := &recordingConsumer{name: "drain"}
	dispatcher := events.NewDispatcher(testLogger(), 64, consumer)

	for i := 0; i < 20; i++ {
		dispatcher.Publish(context.Background(), storedEvent("evt"))
	}
	dispatcher.Close()

	require.Len(t, consumer.events(), 20)
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	consumer := &recordingConsumer{name: "closed"}
	dispatcher := events.NewDispatcher(testLogger(), 8, consumer)
	dispatcher.Close()

	// Must not panic or deliver.
	dispatcher.Publish(context.Background(), storedEvent("evt-late"))

	assert.Empty(t, consumer.events())
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	dispatcher := events.NewDispatcher(testLogger(), 8)
	dispatcher.Close()
	dispatcher.Close()
}
