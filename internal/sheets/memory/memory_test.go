package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coachpay/internal/core"
)

func record(first string, units int) core.TrainingRecord {
	return core.TrainingRecord{
		FirstName: first,
		LastName:  "Lopez",
		Category:  "escuela",
		Role:      core.Principal,
		Month:     core.Enero,
		Units:     units,
	}
}

func TestMemoryStoreAppendReadClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh store, got %v", err)
	}
	if err := s.Append(ctx, []core.TrainingRecord{record("A", 1), record("B", 2)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, []core.TrainingRecord{record("C", 3)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := s.ReadAll(ctx)
	if err != nil || len(got) != 3 {
		t.Fatalf("unexpected read: %v %v", got, err)
	}
	if got[0].FirstName != "A" || got[1].FirstName != "B" || got[2].FirstName != "C" {
		t.Fatalf("expected append order, got %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.ReadAll(ctx); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
	if err := s.Append(ctx, []core.TrainingRecord{record("D", 1)}); err != nil {
		t.Fatalf("append after clear: %v", err)
	}
	if got, _ := s.ReadAll(ctx); len(got) != 1 || got[0].FirstName != "D" {
		t.Fatalf("unexpected records after re-init: %+v", got)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := record("", 1)
	if err := s.Append(context.Background(), []core.TrainingRecord{record("A", 1), bad}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.ReadAll(context.Background()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected nothing stored after rejected batch, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No seed file -> empty store
	if _, err := NewFromFiles(dir).ReadAll(context.Background()); !IsNotFound(err) {
		t.Fatalf("expected empty store without seed, got %v", err)
	}
	seed := "Nombre,Apellidos,Categoria,Rol,Horas entrenadas,Partidos casa,Partidos fuera,Mes,Fecha registro\n" +
		"Ana,Lopez,escuela,Principal,4,1,0,Enero,2025-01-31 10:00:00\n"
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	got, err := NewFromFiles(dir).ReadAll(context.Background())
	if err != nil || len(got) != 1 || got[0].Units != 4 {
		t.Fatalf("unexpected seeded records: %+v %v", got, err)
	}
}
