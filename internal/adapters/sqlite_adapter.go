package adapters

import (
	"context"
	"errors"
	"fmt"

	"coachpay/internal/amqp"
	"coachpay/internal/core"
	"coachpay/internal/sheets"
	"coachpay/internal/storage"
)

// SQLiteAdapter bundles the SQLite repository with the optional AMQP client
// so the backend factory can hand out one value as both record store and
// sync publisher.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	amqp    *amqp.Client
}

var _ sheets.RecordStore = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		amqp:    amqpClient,
	}
}

// Append implements sheets.RecordAppender
func (a *SQLiteAdapter) Append(ctx context.Context, records []core.TrainingRecord) error {
	return a.storage.Append(ctx, records)
}

// ReadAll implements sheets.RecordReader
func (a *SQLiteAdapter) ReadAll(ctx context.Context) ([]core.TrainingRecord, error) {
	return a.storage.ReadAll(ctx)
}

// Clear implements sheets.RecordClearer
func (a *SQLiteAdapter) Clear(ctx context.Context) error {
	return a.storage.Clear(ctx)
}

// SyncEnabled reports whether change messages reach a broker.
func (a *SQLiteAdapter) SyncEnabled() bool {
	return a.amqp != nil
}

// PublishRecordsAppended is a no-op without a broker.
func (a *SQLiteAdapter) PublishRecordsAppended(ctx context.Context, ids []string) error {
	if a.amqp == nil {
		return nil
	}
	return a.amqp.PublishRecordsAppended(ctx, ids)
}

// PublishRecordsCleared is a no-op without a broker.
func (a *SQLiteAdapter) PublishRecordsCleared(ctx context.Context) error {
	if a.amqp == nil {
		return nil
	}
	return a.amqp.PublishRecordsCleared(ctx)
}

// Ping checks the database.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

// Close closes both the broker connection and the database.
func (a *SQLiteAdapter) Close() error {
	var errs []error
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
