package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portsrepo "github.com/finstream/records_backend/internal/core/ports/repositories"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
)

// aggregationService implements the filtered read/aggregation path.
type aggregationService struct {
	recordRepo portsrepo.RecordReader
}

// NewAggregationService creates a new AggregationService.
func NewAggregationService(recordRepo portsrepo.RecordReader) portssvc.AggregationSvcFacade {
	return &aggregationService{recordRepo: recordRepo}
}

// Ensure aggregationService implements the portssvc.AggregationSvcFacade interface
var _ portssvc.AggregationSvcFacade = (*aggregationService)(nil)

// Aggregate queries the matching records and partitions them by destinationId.
// Group order follows the first appearance of each destinationId within the
// time-ordered record sequence; no separate sort is applied.
func (s *aggregationService) Aggregate(ctx context.Context, filter domain.RecordFilter) (*domain.AggregationResult, error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, fmt.Errorf("%w: type must be either \"positive\" or \"negative\"", apperrors.ErrValidation)
	}

	records, err := s.recordRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for aggregation: %w", err)
	}

	groups := []domain.AggregationGroup{}
	groupIndex := map[string]int{}
	for _, rec := range records {
		i, ok := groupIndex[rec.DestinationID]
		if !ok {
			i = len(groups)
			groupIndex[rec.DestinationID] = i
			groups = append(groups, domain.AggregationGroup{
				DestinationID: rec.DestinationID,
				TotalValue:    decimal.Zero,
			})
		}
		groups[i].Count++
		groups[i].TotalValue = groups[i].TotalValue.Add(rec.Value)
	}

	return &domain.AggregationResult{
		Records: records,
		Groups:  groups,
	}, nil
}
