package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType classifies a record as positive or negative. It is an independent
// label and does not constrain the sign of the record's value.
type RecordType string

const (
	RecordTypePositive RecordType = "positive"
	RecordTypeNegative RecordType = "negative"
)

// IsValid reports whether the type is one of the supported enum values.
func (t RecordType) IsValid() bool {
	return t == RecordTypePositive || t == RecordTypeNegative
}

// Record is the atomic stored unit. RecordID is the externally supplied
// idempotency key; ID is the internal surrogate assigned at creation and never
// reused. Records are immutable once created.
type Record struct {
	ID            int64           `json:"id"`            // Surrogate key, monotonic (BIGSERIAL)
	RecordID      string          `json:"recordId"`      // Business idempotency key (unique)
	Time          time.Time       `json:"time"`          // Event time, used for ordering and range filters
	SourceID      string          `json:"sourceId"`      // Opaque source identifier
	DestinationID string          `json:"destinationId"` // Opaque destination identifier, aggregation group key
	Type          RecordType      `json:"type"`          // positive or negative
	Value         decimal.Decimal `json:"value"`         // Exact 2-fractional-digit decimal
	Unit          string          `json:"unit"`          // Currency/unit code
	Reference     string          `json:"reference"`     // Correlates records for notification summaries
	CreatedAt     time.Time       `json:"createdAt"`
}

// RecordFilter narrows a record query. Nil fields are not applied; time bounds
// are inclusive.
type RecordFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
	Type      *RecordType
}

// ProcessOutcome is the tagged result of processing one submission. Created is
// true only for the single caller whose insert committed the row; every other
// caller for the same RecordID sees IsDuplicate with the winning row attached.
type ProcessOutcome struct {
	Record      Record
	Created     bool
	IsDuplicate bool
	Message     string
}
