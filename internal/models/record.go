package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record mirrors one row of the records table.
// Note: Value should use a precise decimal type like github.com/shopspring/decimal
type Record struct {
	ID            int64           `db:"id"`             // BIGSERIAL surrogate key
	RecordID      string          `db:"record_id"`      // Unique business key
	Time          time.Time       `db:"time"`           // Event timestamp
	SourceID      string          `db:"source_id"`      //
	DestinationID string          `db:"destination_id"` //
	Type          string          `db:"type"`           // positive or negative
	Value         decimal.Decimal `db:"value"`          // NUMERIC(15,2)
	Unit          string          `db:"unit"`           //
	Reference     string          `db:"reference"`      //
	CreatedAt     time.Time       `db:"created_at"`     //
}
