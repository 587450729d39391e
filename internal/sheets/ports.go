package sheets

import (
	"context"

	"coachpay/internal/core"
)

// Ports for the record store adapters.
type (
	RecordAppender interface {
		// Append adds records after the existing rows, creating the store if
		// it does not exist yet.
		Append(ctx context.Context, records []core.TrainingRecord) error
	}

	RecordReader interface {
		// ReadAll returns every stored row in append order, or
		// core.ErrNotFound when nothing has been stored.
		ReadAll(ctx context.Context) ([]core.TrainingRecord, error)
	}

	RecordClearer interface {
		// Clear removes every stored row. It cannot be undone.
		Clear(ctx context.Context) error
	}

	// RecordStore is the full tabular store contract.
	RecordStore interface {
		RecordAppender
		RecordReader
		RecordClearer
	}
)
