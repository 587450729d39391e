package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"coachpay/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "coachpay.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty table, got %v", err)
	}

	created := time.Date(2025, 4, 12, 18, 30, 5, 0, time.UTC)
	in := []core.TrainingRecord{
		{ID: "a", FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Abril, Units: 3, HomeGames: 1, AwayGames: 2, Days: []int{1, 8, 15}, CreatedAt: created},
		{ID: "b", FirstName: "Luis", LastName: "Gil", Category: "infantil femenino", Role: core.Ayudante, Month: core.Abril, Units: 1, CreatedAt: created},
	}
	if err := repo.Append(ctx, in); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	a := got[0]
	if a.ID != "a" || a.Role != core.Principal || a.Month != core.Abril || a.Units != 3 || a.HomeGames != 1 || a.AwayGames != 2 {
		t.Fatalf("unexpected first record: %+v", a)
	}
	if len(a.Days) != 3 || a.Days[2] != 15 || !a.CreatedAt.Equal(created) {
		t.Fatalf("days or timestamp lost: %+v", a)
	}
	if got[1].Days != nil {
		t.Fatalf("expected no days for second record, got %v", got[1].Days)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSQLiteRepositoryPendingSync(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var batch []core.TrainingRecord
	for _, name := range []string{"Ana", "Luis", "Marta"} {
		batch = append(batch, core.TrainingRecord{FirstName: name, LastName: "X", Role: core.Principal, Month: core.Enero, Units: 1})
	}
	if err := repo.Append(ctx, batch); err != nil {
		t.Fatalf("append: %v", err)
	}

	pending, err := repo.PendingSync(ctx, 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].Record.FirstName != "Ana" || pending[1].Record.FirstName != "Luis" {
		t.Fatalf("expected the two oldest rows, got %+v", pending)
	}

	if err := repo.MarkSynced(ctx, []int64{pending[0].Seq, pending[1].Seq}, time.Now()); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	n, err := repo.CountPending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one pending row, got %d (%v)", n, err)
	}
	rest, err := repo.PendingSync(ctx, 0)
	if err != nil || len(rest) != 1 || rest[0].Record.FirstName != "Marta" {
		t.Fatalf("unexpected remaining rows: %+v %v", rest, err)
	}
}

func TestSQLiteRepositoryRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	err := repo.Append(ctx, []core.TrainingRecord{{FirstName: "Ana", LastName: "Lopez", Month: core.Enero, Units: -1}})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coachpay.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		repo.Close()
	}
}
