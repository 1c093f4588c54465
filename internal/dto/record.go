package dto

import (
	"encoding/json"

	"github.com/finstream/records_backend/internal/core/domain"
	"github.com/finstream/records_backend/internal/utils/money"
)

// RecordTimeLayout is the wire format for record timestamps
// (Y-m-d H:i:s in the upstream clients' terms).
const RecordTimeLayout = "2006-01-02 15:04:05"

// CreateRecordRequest is the POST /records payload. Time and Value arrive as
// strings and are parsed at the boundary; Value accepts a JSON number or a
// numeric string.
type CreateRecordRequest struct {
	RecordID      string      `json:"recordId" binding:"required,max=255"`
	Time          string      `json:"time" binding:"required"`
	SourceID      string      `json:"sourceId" binding:"required,max=255"`
	DestinationID string      `json:"destinationId" binding:"required,max=255"`
	Type          string      `json:"type" binding:"required,oneof=positive negative"`
	Value         json.Number `json:"value" binding:"required"`
	Unit          string      `json:"unit" binding:"required,max=255"`
	Reference     string      `json:"reference" binding:"required,max=255"`
}

// RecordData is the wire representation of a stored record.
type RecordData struct {
	ID            int64  `json:"id"`
	RecordID      string `json:"recordId"`
	Time          string `json:"time"`
	SourceID      string `json:"sourceId"`
	DestinationID string `json:"destinationId"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	Unit          string `json:"unit"`
	Reference     string `json:"reference"`
}

// StoreRecordData extends RecordData with the idempotency marker.
type StoreRecordData struct {
	RecordData
	IsDuplicate bool `json:"isDuplicate"`
}

// StoreRecordResponse is the success body of POST /records.
type StoreRecordResponse struct {
	Message string          `json:"message"`
	Data    StoreRecordData `json:"data"`
}

// ErrorResponse is the body of every error response. Errors is keyed by field
// for validation failures and empty otherwise.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// AggregateGroupData is one destination group in the aggregate response.
type AggregateGroupData struct {
	DestinationID string `json:"destinationId"`
	RecordCount   int    `json:"recordCount"`
	TotalValue    string `json:"totalValue"`
}

// AggregateData is the payload of GET /records/aggregate.
type AggregateData struct {
	Count   int                  `json:"count"`
	Records []RecordData         `json:"records"`
	Groups  []AggregateGroupData `json:"groups"`
}

// AggregateResponse is the success body of GET /records/aggregate.
type AggregateResponse struct {
	Message string        `json:"message"`
	Data    AggregateData `json:"data"`
}

// ToRecordData converts a domain record to its wire representation. Value
// always carries exactly two fractional digits.
func ToRecordData(d domain.Record) RecordData {
	return RecordData{
		ID:            d.ID,
		RecordID:      d.RecordID,
		Time:          d.Time.Format(RecordTimeLayout),
		SourceID:      d.SourceID,
		DestinationID: d.DestinationID,
		Type:          string(d.Type),
		Value:         money.FormatAmount(d.Value),
		Unit:          d.Unit,
		Reference:     d.Reference,
	}
}

// ToStoreRecordResponse builds the POST /records success body from a process
// outcome.
func ToStoreRecordResponse(outcome domain.ProcessOutcome) StoreRecordResponse {
	return StoreRecordResponse{
		Message: outcome.Message,
		Data: StoreRecordData{
			RecordData:  ToRecordData(outcome.Record),
			IsDuplicate: outcome.IsDuplicate,
		},
	}
}

// ToAggregateResponse builds the aggregate response body. Group totals render
// in trimmed decimal form ("150", "-25"), matching what clients assert.
func ToAggregateResponse(result domain.AggregationResult) AggregateResponse {
	records := make([]RecordData, len(result.Records))
	for i, rec := range result.Records {
		records[i] = ToRecordData(rec)
	}
	groups := make([]AggregateGroupData, len(result.Groups))
	for i, g := range result.Groups {
		groups[i] = AggregateGroupData{
			DestinationID: g.DestinationID,
			RecordCount:   g.Count,
			TotalValue:    money.FormatTotal(g.TotalValue),
		}
	}
	return AggregateResponse{
		Message: "Records aggregated successfully",
		Data: AggregateData{
			Count:   len(records),
			Records: records,
			Groups:  groups,
		},
	}
}
