package domain

import "github.com/shopspring/decimal"

// AggregationGroup summarises the records sharing one destinationId under the
// active filter. Groups are derived per query and never persisted.
type AggregationGroup struct {
	DestinationID string
	Count         int
	TotalValue    decimal.Decimal
}

// AggregationResult carries the filtered records (time ascending, surrogate id
// breaking ties) and their groups in first-occurrence order of destinationId.
type AggregationResult struct {
	Records []Record
	Groups  []AggregationGroup
}

// ReferenceSummary describes the peer records sharing a (destinationId,
// reference) pair, split by record type. Computed for notification emission.
type ReferenceSummary struct {
	DestinationID string          `json:"destinationId"`
	Reference     string          `json:"reference"`
	Count         int             `json:"count"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	PositiveCount int             `json:"positiveCount"`
	NegativeCount int             `json:"negativeCount"`
	PositiveTotal decimal.Decimal `json:"positiveTotal"`
	NegativeTotal decimal.Decimal `json:"negativeTotal"`
}
