package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coachpay/internal/core"
	"coachpay/internal/metrics"
	"coachpay/internal/sheets"

	"github.com/google/uuid"
)

// Publisher announces record table changes to the sync worker.
type Publisher interface {
	PublishRecordsAppended(ctx context.Context, ids []string) error
	PublishRecordsCleared(ctx context.Context) error
}

// RecordService validates submissions and writes them to the record store.
type RecordService struct {
	store      sheets.RecordStore
	publisher  Publisher
	metrics    *metrics.Manager
	seasonYear int
	now        func() time.Time
	newID      func() string
}

type Option func(*RecordService)

// WithPublisher enables sync messages after every append and clear.
func WithPublisher(p Publisher) Option {
	return func(s *RecordService) { s.publisher = p }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *RecordService) { s.metrics = m }
}

// WithClock replaces time.Now for the submission timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *RecordService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *RecordService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSeasonYear sets the year used to check that picked days exist in
// their month.
func WithSeasonYear(year int) Option {
	return func(s *RecordService) {
		if year > 0 {
			s.seasonYear = year
		}
	}
}

func NewRecordService(store sheets.RecordStore, opts ...Option) *RecordService {
	s := &RecordService{
		store:      store,
		seasonYear: time.Now().Year(),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeasonYear is the year submissions are validated against.
func (s *RecordService) SeasonYear() int { return s.seasonYear }

// Submit validates the whole submission, then stores one record per block.
// Nothing is stored when any block is invalid.
func (s *RecordService) Submit(ctx context.Context, sub core.Submission) ([]core.TrainingRecord, error) {
	if err := sub.Validate(s.seasonYear); err != nil {
		s.metrics.RecordRejection()
		return nil, err
	}

	records := sub.Records(s.now(), s.newID)
	if err := s.store.Append(ctx, records); err != nil {
		return nil, fmt.Errorf("append records: %w", err)
	}
	s.metrics.RecordSubmission(len(records))

	slog.InfoContext(ctx, "Submission stored",
		"first_name", records[0].FirstName,
		"last_name", records[0].LastName,
		"records", len(records))

	if s.publisher != nil {
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		if err := s.publisher.PublishRecordsAppended(ctx, ids); err != nil {
			// Records are stored; the worker's periodic pass picks them up.
			slog.ErrorContext(ctx, "Failed to publish records appended", "error", err, "records", len(ids))
		}
	}
	return records, nil
}

// List returns every stored record in append order.
func (s *RecordService) List(ctx context.Context) ([]core.TrainingRecord, error) {
	return s.store.ReadAll(ctx)
}

// Clear irrecoverably removes all records.
func (s *RecordService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	s.metrics.RecordClear()
	slog.WarnContext(ctx, "Record table cleared")

	if s.publisher != nil {
		if err := s.publisher.PublishRecordsCleared(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish records cleared", "error", err)
		}
	}
	return nil
}
