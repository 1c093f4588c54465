package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/finstream/records_backend/internal/core/domain"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
)

// Dispatcher fans RecordStored events out to the registered consumers on a
// dedicated goroutine, keeping consumer work off the request path. It is safe
// for concurrent publishers. Suitable for single-instance deployments; a
// broker-backed publisher can replace it without touching the consumers.
type Dispatcher struct {
	logger    *slog.Logger
	consumers []portssvc.RecordEventConsumer
	eventChan chan domain.RecordStored
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

// NewDispatcher creates a dispatcher and starts its delivery goroutine.
// bufferSize determines how many events may be pending before new ones are
// dropped.
func NewDispatcher(logger *slog.Logger, bufferSize int, consumers ...portssvc.RecordEventConsumer) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	d := &Dispatcher{
		logger:    logger,
		consumers: consumers,
		eventChan: make(chan domain.RecordStored, bufferSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Ensure Dispatcher implements the portssvc.RecordEventPublisher interface
var _ portssvc.RecordEventPublisher = (*Dispatcher)(nil)

// Publish enqueues an event for asynchronous delivery. It never blocks the
// caller: when the buffer is full or the dispatcher is closed the event is
// dropped with a warning.
func (d *Dispatcher) Publish(ctx context.Context, event domain.RecordStored) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping event", slog.String("event_id", event.EventID))
		return
	}

	select {
	case d.eventChan <- event:
	default:
		d.logger.Warn("Event buffer full, dropping event",
			slog.String("event_id", event.EventID),
			slog.String("record_id", event.Record.RecordID),
		)
	}
}

// run delivers events to every consumer in registration order. A single
// delivery goroutine keeps per-record event ordering deterministic.
func (d *Dispatcher) run() {
	defer d.wg.Done()

	for event := range d.eventChan {
		eventLogger := d.logger.With(
			slog.String("event_id", event.EventID),
			slog.String("record_id", event.Record.RecordID),
		)
		ctx := middleware.ContextWithLogger(context.Background(), eventLogger)

		for _, consumer := range d.consumers {
			d.deliver(ctx, consumer, event, eventLogger)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, consumer portssvc.RecordEventConsumer, event domain.RecordStored, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event consumer panicked",
				slog.String("consumer", consumer.Name()),
				slog.Any("panic", r),
			)
		}
	}()
	consumer.Handle(ctx, event)
}

// Close stops accepting events and blocks until the pending buffer has been
// delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.eventChan)
	d.mu.Unlock()

	d.wg.Wait()
}
