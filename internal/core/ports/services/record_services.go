package services

import (
	"context"

	"github.com/finstream/records_backend/internal/core/domain"
)

// RecordSvcFacade exposes the idempotent ingestion path. The input is assumed
// shape-validated by the transport layer; the service adds the idempotency and
// persistence contract on top.
type RecordSvcFacade interface {
	// ProcessRecord stores the record if its RecordID is unseen and emits a
	// RecordStored event for the winning creation. Duplicate submissions
	// (pre-checked or race-detected) return the existing row with
	// IsDuplicate set. Unexpected persistence failures return an error.
	ProcessRecord(ctx context.Context, input domain.Record) (*domain.ProcessOutcome, error)
}

// AggregationSvcFacade exposes the filtered read/aggregation path.
type AggregationSvcFacade interface {
	// Aggregate returns the records matching the filter together with their
	// per-destination groups. An invalid filter type wraps
	// apperrors.ErrValidation; an empty result set is not an error.
	Aggregate(ctx context.Context, filter domain.RecordFilter) (*domain.AggregationResult, error)
}
