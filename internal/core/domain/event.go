package domain

import "time"

// RecordStored is emitted exactly once per newly created record, after the
// insert has committed. Consumers must tolerate at-least-once delivery; they
// perform no writes to the record store.
type RecordStored struct {
	EventID    string    `json:"eventId"`
	Record     Record    `json:"record"`
	OccurredAt time.Time `json:"occurredAt"`
}
