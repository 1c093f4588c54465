package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finstream/records_backend/internal/core/domain"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
)

// Severity levels for threshold alerts.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

var (
	pctCritical = decimal.NewFromInt(50)
	pctHigh     = decimal.NewFromInt(25)
	hundred     = decimal.NewFromInt(100)
)

// AlertPayload is the message emitted when a record value exceeds the
// configured threshold.
type AlertPayload struct {
	Record     domain.Record   `json:"record"`
	Threshold  decimal.Decimal `json:"threshold"`
	ExceededBy decimal.Decimal `json:"exceededBy"`
	Severity   string          `json:"severity"`
}

// AlertConsumer reacts to RecordStored events by emitting a high-value alert
// when the record value exceeds the threshold. Only positive excess triggers:
// a value at or under the threshold is a no-op. The consumer performs no
// writes, so repeated delivery of the same event is harmless.
type AlertConsumer struct {
	threshold decimal.Decimal
}

// NewAlertConsumer creates an alert consumer with the given threshold.
func NewAlertConsumer(threshold decimal.Decimal) *AlertConsumer {
	return &AlertConsumer{threshold: threshold}
}

// Ensure AlertConsumer implements the portssvc.RecordEventConsumer interface
var _ portssvc.RecordEventConsumer = (*AlertConsumer)(nil)

func (c *AlertConsumer) Name() string {
	return "alert"
}

// Evaluate computes the alert payload for a record, or reports false when the
// threshold is not exceeded.
func (c *AlertConsumer) Evaluate(record domain.Record) (*AlertPayload, bool) {
	if record.Value.LessThanOrEqual(c.threshold) {
		return nil, false
	}

	exceededBy := record.Value.Sub(c.threshold)
	percentExceeded := exceededBy.Div(c.threshold).Mul(hundred)

	severity := SeverityMedium
	if percentExceeded.GreaterThan(pctCritical) {
		severity = SeverityCritical
	} else if percentExceeded.GreaterThan(pctHigh) {
		severity = SeverityHigh
	}

	return &AlertPayload{
		Record:     record,
		Threshold:  c.threshold,
		ExceededBy: exceededBy,
		Severity:   severity,
	}, true
}

// Handle emits the alert for qualifying events. Delivery beyond the log line
// (queue, webhook) is a downstream concern; the payload is the contract.
func (c *AlertConsumer) Handle(ctx context.Context, event domain.RecordStored) {
	payload, ok := c.Evaluate(event.Record)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Warn("High value alert triggered",
		slog.String("event_id", event.EventID),
		slog.String("record_id", payload.Record.RecordID),
		slog.String("value", payload.Record.Value.StringFixed(2)),
		slog.String("threshold", payload.Threshold.StringFixed(2)),
		slog.String("exceeded_by", payload.ExceededBy.StringFixed(2)),
		slog.String("severity", payload.Severity),
	)
}
