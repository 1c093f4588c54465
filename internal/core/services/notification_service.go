package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finstream/records_backend/internal/core/domain"
	portsrepo "github.com/finstream/records_backend/internal/core/ports/repositories"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
)

// NotificationConsumer reacts to every RecordStored event by summarising the
// other records sharing the stored record's (destinationId, reference) pair
// and emitting the record together with that summary. Read-only, so repeated
// delivery of the same event is harmless.
type NotificationConsumer struct {
	recordRepo portsrepo.RecordReader
}

// NewNotificationConsumer creates a notification consumer backed by the given
// record reader.
func NewNotificationConsumer(recordRepo portsrepo.RecordReader) *NotificationConsumer {
	return &NotificationConsumer{recordRepo: recordRepo}
}

// Ensure NotificationConsumer implements the portssvc.RecordEventConsumer interface
var _ portssvc.RecordEventConsumer = (*NotificationConsumer)(nil)

func (c *NotificationConsumer) Name() string {
	return "notification"
}

// Summarize computes the peer-record summary for a stored record, excluding
// the record itself.
func (c *NotificationConsumer) Summarize(ctx context.Context, record domain.Record) (*domain.ReferenceSummary, error) {
	peers, err := c.recordRepo.FindByDestinationAndReference(ctx, record.DestinationID, record.Reference, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load peer records for destination %s reference %s: %w", record.DestinationID, record.Reference, err)
	}

	summary := &domain.ReferenceSummary{
		DestinationID: record.DestinationID,
		Reference:     record.Reference,
		Count:         len(peers),
		TotalValue:    decimal.Zero,
		PositiveTotal: decimal.Zero,
		NegativeTotal: decimal.Zero,
	}
	for _, peer := range peers {
		summary.TotalValue = summary.TotalValue.Add(peer.Value)
		switch peer.Type {
		case domain.RecordTypePositive:
			summary.PositiveCount++
			summary.PositiveTotal = summary.PositiveTotal.Add(peer.Value)
		case domain.RecordTypeNegative:
			summary.NegativeCount++
			summary.NegativeTotal = summary.NegativeTotal.Add(peer.Value)
		}
	}

	return summary, nil
}

// Handle emits the notification for the event's record. Failures are logged
// and swallowed: notification delivery never affects the stored record or the
// response already sent.
func (c *NotificationConsumer) Handle(ctx context.Context, event domain.RecordStored) {
	logger := middleware.GetLoggerFromCtx(ctx)

	summary, err := c.Summarize(ctx, event.Record)
	if err != nil {
		logger.Error("Failed to build notification summary",
			slog.String("event_id", event.EventID),
			slog.String("record_id", event.Record.RecordID),
			slog.String("error", err.Error()),
		)
		return
	}

	logger.Info("Notification sent",
		slog.String("event_id", event.EventID),
		slog.String("record_id", event.Record.RecordID),
		slog.String("destination_id", summary.DestinationID),
		slog.String("reference", summary.Reference),
		slog.Int("count", summary.Count),
		slog.String("total_value", summary.TotalValue.String()),
		slog.Int("positive_count", summary.PositiveCount),
		slog.Int("negative_count", summary.NegativeCount),
		slog.String("positive_total", summary.PositiveTotal.String()),
		slog.String("negative_total", summary.NegativeTotal.String()),
	)
}
