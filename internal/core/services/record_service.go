package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portsrepo "github.com/finstream/records_backend/internal/core/ports/repositories"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
)

// Response messages for the ingestion path. The exact wording is part of the
// API contract and asserted by clients.
const (
	MsgRecordProcessed      = "Record processed successfully"
	MsgDuplicateIdempotent  = "Record already processed (idempotent response)"
	MsgDuplicateRaceHandled = "Record already processed (race condition handled)"
)

// recordService implements the idempotent ingestion path.
type recordService struct {
	recordRepo portsrepo.RecordRepositoryFacade
	publisher  portssvc.RecordEventPublisher
}

// NewRecordService creates a new RecordService. The publisher may be nil, in
// which case no events are emitted.
func NewRecordService(recordRepo portsrepo.RecordRepositoryFacade, publisher portssvc.RecordEventPublisher) portssvc.RecordSvcFacade {
	return &recordService{
		recordRepo: recordRepo,
		publisher:  publisher,
	}
}

// Ensure recordService implements the portssvc.RecordSvcFacade interface
var _ portssvc.RecordSvcFacade = (*recordService)(nil)

// ProcessRecord stores the record at most once per RecordID. The pre-check
// handles the common sequential duplicate cheaply; the store's uniqueness
// constraint settles the race when two callers pass the pre-check
// simultaneously. Exactly the caller whose insert committed emits a
// RecordStored event.
func (s *recordService) ProcessRecord(ctx context.Context, input domain.Record) (*domain.ProcessOutcome, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.recordRepo.FindByRecordID(ctx, input.RecordID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing record %s: %w", input.RecordID, err)
	}
	if existing != nil {
		logger.Info("Duplicate record submission", slog.String("record_id", input.RecordID), slog.Int64("id", existing.ID))
		return &domain.ProcessOutcome{
			Record:      *existing,
			IsDuplicate: true,
			Message:     MsgDuplicateIdempotent,
		}, nil
	}

	input.CreatedAt = time.Now().UTC()

	created, stored, err := s.recordRepo.InsertIfAbsent(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to persist record %s: %w", input.RecordID, err)
	}

	if !created {
		// Both callers passed the pre-check; the other one's insert won.
		// The winner already emitted the event, so this path must not.
		logger.Info("Duplicate record race handled", slog.String("record_id", input.RecordID), slog.Int64("id", stored.ID))
		return &domain.ProcessOutcome{
			Record:      *stored,
			IsDuplicate: true,
			Message:     MsgDuplicateRaceHandled,
		}, nil
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.RecordStored{
			EventID:    uuid.NewString(),
			Record:     *stored,
			OccurredAt: time.Now().UTC(),
		})
	}

	logger.Info("Record processed", slog.String("record_id", stored.RecordID), slog.Int64("id", stored.ID))
	return &domain.ProcessOutcome{
		Record:  *stored,
		Created: true,
		Message: MsgRecordProcessed,
	}, nil
}
