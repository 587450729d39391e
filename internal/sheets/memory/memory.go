package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"coachpay/internal/core"
	"coachpay/internal/sheets"
)

// SeedFile is the optional CSV, in the record table layout, loaded by
// NewFromFiles.
const SeedFile = "seed_records.csv"

var _ sheets.RecordStore = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.TrainingRecord
}

func New(seed ...core.TrainingRecord) *Store {
	return &Store{items: append([]core.TrainingRecord(nil), seed...)}
}

// NewFromFiles seeds the store from base/seed_records.csv when present.
// A missing or unreadable seed leaves the store empty.
func NewFromFiles(base string) *Store {
	f, err := os.Open(filepath.Join(base, SeedFile))
	if err != nil {
		return New()
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return New()
	}
	recs, err := sheets.DecodeTable(rows)
	if err != nil {
		return New()
	}
	return New(recs...)
}

// Append stores copies of the records after the existing ones.
func (s *Store) Append(_ context.Context, records []core.TrainingRecord) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		r.Days = append([]int(nil), r.Days...)
		s.items = append(s.items, r)
	}
	return nil
}

// ReadAll returns a copy of every stored record.
func (s *Store) ReadAll(_ context.Context) ([]core.TrainingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, core.ErrNotFound
	}
	return append([]core.TrainingRecord(nil), s.items...), nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

// IsNotFound is a convenience for callers that only hold this package.
func IsNotFound(err error) bool { return errors.Is(err, core.ErrNotFound) }
