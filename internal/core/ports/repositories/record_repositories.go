package repositories

import (
	"context"

	"github.com/finstream/records_backend/internal/core/domain"
)

// RecordReader defines read operations for record data
type RecordReader interface {
	// FindByRecordID retrieves a record by its business idempotency key.
	// Returns apperrors.ErrNotFound when no row exists.
	FindByRecordID(ctx context.Context, recordID string) (*domain.Record, error)

	// Query retrieves all records matching the filter, ordered by time
	// ascending with the surrogate id breaking ties.
	Query(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error)

	// FindByDestinationAndReference retrieves the records sharing a
	// (destinationId, reference) pair, excluding the row with the given
	// surrogate id. Used for notification peer summaries.
	FindByDestinationAndReference(ctx context.Context, destinationID, reference string, excludeID int64) ([]domain.Record, error)
}

// RecordWriter defines write operations for record data
type RecordWriter interface {
	// InsertIfAbsent persists the record unless a row with the same RecordID
	// already exists. It returns created=true with the new row, or
	// created=false with the existing row when the insert lost to a
	// concurrent writer or the row predates the call. A unique-constraint
	// violation is never surfaced to the caller.
	InsertIfAbsent(ctx context.Context, record domain.Record) (bool, *domain.Record, error)
}

// RecordRepositoryFacade combines all record repository interfaces.
type RecordRepositoryFacade interface {
	RecordReader
	RecordWriter
}
