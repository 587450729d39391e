// Package csvfile keeps the record table in a single CSV file with the
// fixed header. Appends add rows at the end of the file; the header is
// written only when the file is created. A file written under an older
// header is rewritten under the current one before the first append.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"coachpay/internal/core"
	"coachpay/internal/sheets"
)

// DefaultFileName matches the file name the club has always exported.
const DefaultFileName = "registros_entrenadores.csv"

var _ sheets.RecordStore = (*Store)(nil)

// Store serializes access within one process only. Two processes appending
// to the same file are not coordinated.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Append(ctx context.Context, records []core.TrainingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	newFile := false
	if st, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) || (err == nil && st.Size() == 0) {
		newFile = true
	}
	if !newFile {
		if err := s.upgradeLocked(); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(sheets.RecordHeader); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range records {
		if err := w.Write(sheets.EncodeRecord(r)); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return f.Close()
}

// upgradeLocked rewrites the file under RecordHeader when its header
// differs. The new content is written to a sibling file and renamed over
// the original.
func (s *Store) upgradeLocked() error {
	rows, err := s.readRowsLocked()
	if err != nil {
		return err
	}
	if len(rows) == 0 || sheets.IsCurrentHeader(rows[0]) {
		return nil
	}
	table, err := sheets.UpgradeTable(rows)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", tmp, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(table); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) readRowsLocked() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return rows, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]core.TrainingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRowsLocked()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sheets.DecodeTable(rows)
}

// Clear deletes the file. Clearing a store that does not exist is not an
// error.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
