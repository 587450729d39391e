// Package worker mirrors records stored in SQLite to the Google Sheets
// record store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coachpay/internal/amqp"
	"coachpay/internal/core"
	"coachpay/internal/metrics"
	"coachpay/internal/sheets"
	"coachpay/internal/storage"
)

// Mirror is the store records are copied to.
type Mirror interface {
	sheets.RecordAppender
	sheets.RecordClearer
}

// SyncWorker copies pending SQLite rows to the mirror in batches.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    Mirror
	batchSize int
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirror Mirror, batchSize int, m *metrics.Manager) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
		metrics:   m,
		now:       time.Now,
	}
}

// HandleMessage processes one broker message. The ids carried by an
// appended message are informational: every pending row is synced, so a
// lost message is caught up by the next one.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.RecordsMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"event", msg.Event,
		"ids", len(msg.IDs),
		"timestamp", msg.Timestamp)

	switch msg.Event {
	case amqp.EventRecordsAppended:
		_, err := w.SyncPending(ctx)
		return err
	case amqp.EventRecordsCleared:
		if err := w.mirror.Clear(ctx); err != nil {
			w.metrics.RecordSyncError("clear")
			return fmt.Errorf("clear mirror: %w", err)
		}
		slog.InfoContext(ctx, "Mirror cleared")
		return nil
	default:
		return fmt.Errorf("unknown event %q", msg.Event)
	}
}

// SyncPending copies pending rows until none are left and returns how many
// it copied. A failing batch stays pending and is retried later.
func (w *SyncWorker) SyncPending(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		pending, err := w.storage.PendingSync(ctx, w.batchSize)
		if err != nil {
			w.metrics.RecordSyncError("read")
			return total, fmt.Errorf("get pending records: %w", err)
		}
		if len(pending) == 0 {
			break
		}

		records := make([]core.TrainingRecord, len(pending))
		seqs := make([]int64, len(pending))
		for i, p := range pending {
			records[i] = p.Record
			seqs[i] = p.Seq
		}

		if err := w.mirror.Append(ctx, records); err != nil {
			w.metrics.RecordSyncError("append")
			return total, fmt.Errorf("append to mirror: %w", err)
		}
		if err := w.storage.MarkSynced(ctx, seqs, w.now()); err != nil {
			// The rows reached the mirror; they will be sent again next time.
			w.metrics.RecordSyncError("mark")
			return total, fmt.Errorf("mark synced: %w", err)
		}
		total += len(pending)
		w.metrics.RecordSynced(len(pending))

		if len(pending) < w.batchSize {
			break
		}
	}

	if n, err := w.storage.CountPending(ctx); err == nil {
		w.metrics.SetSyncPending(n)
	}
	if total > 0 {
		slog.InfoContext(ctx, "Synced records", "count", total)
	}
	return total, nil
}

// StartupSyncCheck syncs anything left over from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	n, err := w.SyncPending(ctx)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
	}
	return nil
}

// RunTicker re-runs SyncPending every interval until ctx is done. It is
// the backup path for lost broker messages and for backends running
// without a broker.
func (w *SyncWorker) RunTicker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.SyncPending(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}
