package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portsrepo "github.com/finstream/records_backend/internal/core/ports/repositories"
)

// MemoryRecordRepository is an in-memory implementation of the record
// repository. The mutex stands in for the database uniqueness constraint, so
// concurrent InsertIfAbsent callers observe the same exactly-one-winner
// behavior as the pgsql adapter. Used by tests and local runs without a
// database.
type MemoryRecordRepository struct {
	mu      sync.Mutex
	nextID  int64
	byKey   map[string]int // record_id -> index into records
	records []domain.Record
}

// NewMemoryRecordRepository creates an empty in-memory record repository.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{
		nextID: 1,
		byKey:  make(map[string]int),
	}
}

// Ensure MemoryRecordRepository implements portsrepo.RecordRepositoryFacade
var _ portsrepo.RecordRepositoryFacade = (*MemoryRecordRepository)(nil)

func (r *MemoryRecordRepository) InsertIfAbsent(ctx context.Context, record domain.Record) (bool, *domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byKey[record.RecordID]; ok {
		existing := r.records[idx]
		return false, &existing, nil
	}

	record.ID = r.nextID
	r.nextID++
	r.byKey[record.RecordID] = len(r.records)
	r.records = append(r.records, record)

	stored := record
	return true, &stored, nil
}

func (r *MemoryRecordRepository) FindByRecordID(ctx context.Context, recordID string) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byKey[recordID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	record := r.records[idx]
	return &record, nil
}

func (r *MemoryRecordRepository) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.Record{}
	for _, rec := range r.records {
		if filter.StartTime != nil && rec.Time.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && rec.Time.After(*filter.EndTime) {
			continue
		}
		if filter.Type != nil && rec.Type != *filter.Type {
			continue
		}
		matched = append(matched, rec)
	}

	// Records are appended in id order; a stable sort on time preserves id
	// order within equal timestamps.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Time.Before(matched[j].Time)
	})

	return matched, nil
}

func (r *MemoryRecordRepository) FindByDestinationAndReference(ctx context.Context, destinationID, reference string, excludeID int64) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.Record{}
	for _, rec := range r.records {
		if rec.DestinationID != destinationID || rec.Reference != reference || rec.ID == excludeID {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Time.Before(matched[j].Time)
	})
	return matched, nil
}
