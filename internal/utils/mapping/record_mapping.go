package mapping

import (
	"github.com/finstream/records_backend/internal/core/domain"
	"github.com/finstream/records_backend/internal/models"
)

// ToModelRecord converts a domain record to its database model.
func ToModelRecord(d domain.Record) models.Record {
	return models.Record{
		ID:            d.ID,
		RecordID:      d.RecordID,
		Time:          d.Time,
		SourceID:      d.SourceID,
		DestinationID: d.DestinationID,
		Type:          string(d.Type),
		Value:         d.Value,
		Unit:          d.Unit,
		Reference:     d.Reference,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainRecord converts a database model to its domain record.
func ToDomainRecord(m models.Record) domain.Record {
	return domain.Record{
		ID:            m.ID,
		RecordID:      m.RecordID,
		Time:          m.Time,
		SourceID:      m.SourceID,
		DestinationID: m.DestinationID,
		Type:          domain.RecordType(m.Type),
		Value:         m.Value,
		Unit:          m.Unit,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainRecordSlice converts a slice of database models to domain records.
func ToDomainRecordSlice(ms []models.Record) []domain.Record {
	ds := make([]domain.Record, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRecord(m)
	}
	return ds
}
