package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"coachpay/internal/core"
	"coachpay/internal/storage"
)

func TestSQLiteAdapterWithoutBroker(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "coachpay.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	a := NewSQLiteAdapter(repo, nil)
	defer a.Close()

	if a.SyncEnabled() {
		t.Fatal("sync should be disabled without a broker")
	}
	if err := a.PublishRecordsAppended(ctx, []string{"x"}); err != nil {
		t.Fatalf("publish without broker should be a no-op: %v", err)
	}
	if err := a.PublishRecordsCleared(ctx); err != nil {
		t.Fatalf("publish without broker should be a no-op: %v", err)
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	rec := core.TrainingRecord{FirstName: "Ana", LastName: "Lopez", Role: core.Principal, Month: core.Enero, Units: 2}
	if err := a.Append(ctx, []core.TrainingRecord{rec}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got, err := a.ReadAll(ctx); err != nil || len(got) != 1 {
		t.Fatalf("unexpected read: %v %v", got, err)
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := a.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
