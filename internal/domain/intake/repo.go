package intake

import (
	"context"
)

// RecordStore persists patient records. Every method is a single statement.
type RecordStore interface {
	// Create inserts rec and sets its ID and CreatedAt.
	Create(ctx context.Context, rec *PatientRecord) error
	Find(ctx context.Context, q ListQuery) ([]*PatientRecord, error)
	FindOne(ctx context.Context, id int64) (*PatientRecord, error)
	// UpdateConsultation overwrites all four consultation fields.
	UpdateConsultation(ctx context.Context, id int64, c Consultation) error
	Delete(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	// Location names the database for health output, without credentials.
	Location() string
}
