package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/core/domain"
	portsrepo "github.com/finstream/records_backend/internal/core/ports/repositories"
	"github.com/finstream/records_backend/internal/models"
	"github.com/finstream/records_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the Postgres error code raised when the unique index
// on record_id rejects a concurrent duplicate insert.
const uniqueViolationCode = "23505"

const recordColumns = `id, record_id, time, source_id, destination_id, type, value, unit, reference, created_at`

type PgxRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRecordRepository creates a new repository for record data.
func NewPgxRecordRepository(pool *pgxpool.Pool) portsrepo.RecordRepositoryFacade {
	return &PgxRecordRepository{pool: pool}
}

// Ensure PgxRecordRepository implements portsrepo.RecordRepositoryFacade
var _ portsrepo.RecordRepositoryFacade = (*PgxRecordRepository)(nil)

// InsertIfAbsent attempts to insert the record, relying on the unique index on
// record_id as the single source of truth for duplicates. On a unique
// violation it re-reads and returns the winning row instead of an error.
func (r *PgxRecordRepository) InsertIfAbsent(ctx context.Context, record domain.Record) (bool, *domain.Record, error) {
	m := mapping.ToModelRecord(record)
	query := `
		INSERT INTO records (record_id, time, source_id, destination_id, type, value, unit, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
	`
	err := r.pool.QueryRow(ctx, query,
		m.RecordID,
		m.Time,
		m.SourceID,
		m.DestinationID,
		m.Type,
		m.Value,
		m.Unit,
		m.Reference,
		m.CreatedAt,
	).Scan(&m.ID)

	if err == nil {
		stored := mapping.ToDomainRecord(m)
		return true, &stored, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		// Lost the race: another caller committed this record_id first.
		existing, findErr := r.FindByRecordID(ctx, record.RecordID)
		if findErr != nil {
			return false, nil, fmt.Errorf("failed to re-read record %s after conflict: %w", record.RecordID, findErr)
		}
		return false, existing, nil
	}

	return false, nil, fmt.Errorf("failed to insert record %s: %w", record.RecordID, err)
}

// FindByRecordID retrieves a record by its business key.
func (r *PgxRecordRepository) FindByRecordID(ctx context.Context, recordID string) (*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE record_id = $1;
	`
	var m models.Record
	err := r.pool.QueryRow(ctx, query, recordID).Scan(
		&m.ID,
		&m.RecordID,
		&m.Time,
		&m.SourceID,
		&m.DestinationID,
		&m.Type,
		&m.Value,
		&m.Unit,
		&m.Reference,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Map db not found error to application specific error
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record by record_id %s: %w", recordID, err)
	}

	record := mapping.ToDomainRecord(m)
	return &record, nil
}

// Query retrieves records matching the filter, time ascending with the
// surrogate id breaking ties so the order is deterministic for a fixed
// snapshot.
func (r *PgxRecordRepository) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM records`)

	clauses := []string{}
	args := []any{}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		clauses = append(clauses, `time >= $`+strconv.Itoa(len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		clauses = append(clauses, `time <= $`+strconv.Itoa(len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, `type = $`+strconv.Itoa(len(args)))
	}
	if len(clauses) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(clauses, ` AND `))
	}
	sb.WriteString(` ORDER BY time ASC, id ASC;`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByDestinationAndReference retrieves the peer records for a notification
// summary, excluding the triggering row itself.
func (r *PgxRecordRepository) FindByDestinationAndReference(ctx context.Context, destinationID, reference string, excludeID int64) ([]domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE destination_id = $1 AND reference = $2 AND id != $3
		ORDER BY time ASC, id ASC;
	`
	rows, err := r.pool.Query(ctx, query, destinationID, reference, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for destination %s reference %s: %w", destinationID, reference, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]domain.Record, error) {
	modelRecords := []models.Record{}
	for rows.Next() {
		var m models.Record
		if err := rows.Scan(
			&m.ID,
			&m.RecordID,
			&m.Time,
			&m.SourceID,
			&m.DestinationID,
			&m.Type,
			&m.Value,
			&m.Unit,
			&m.Reference,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		modelRecords = append(modelRecords, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return mapping.ToDomainRecordSlice(modelRecords), nil
}
