package services

import (
	"context"

	"github.com/finstream/records_backend/internal/core/domain"
)

// RecordEventPublisher hands a stored-record event to the out-of-band delivery
// path. Publish must not block the caller on consumer completion.
type RecordEventPublisher interface {
	Publish(ctx context.Context, event domain.RecordStored)
}

// RecordEventConsumer is a stateless reaction to a RecordStored event. Handlers
// may be invoked more than once for the same event and perform no writes to the
// record store.
type RecordEventConsumer interface {
	Name() string
	Handle(ctx context.Context, event domain.RecordStored)
}
