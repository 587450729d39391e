package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"coachpay/internal/config"
	"coachpay/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DataBackend = "csv"
	cfg.DataDir = "/srv/coachpay"

	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if bc.Type != CSVBackend || bc.CSVPath != filepath.Join("/srv/coachpay", "registros_entrenadores.csv") {
		t.Fatalf("unexpected backend config: %+v", bc)
	}

	cfg.DataBackend = "postgres"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"csv without path", Config{Type: CSVBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend, GoogleSheetName: "Registros"}, true},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	factory := NewFactory(nil)

	tests := []struct {
		name          string
		cfg           Config
		wantCleanup   bool
		wantReadiness bool
	}{
		{"memory", Config{Type: MemoryBackend, DataDirectory: dir}, false, false},
		{"csv", Config{Type: CSVBackend, CSVPath: filepath.Join(dir, "registros.csv")}, false, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "coachpay.db")}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := factory.CreateBackend(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			if (res.Cleanup != nil) != tt.wantCleanup || (res.Ready != nil) != tt.wantReadiness {
				t.Fatalf("unexpected result shape: %+v", res)
			}
			if res.Publisher != nil {
				t.Fatal("no publisher expected without a broker")
			}
			if res.Ready != nil {
				if err := res.Ready(ctx); err != nil {
					t.Fatalf("Ready() error = %v", err)
				}
			}

			if _, err := res.Store.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("new store should be empty, got %v", err)
			}
			rec := core.TrainingRecord{ID: "r1", FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Enero, Units: 3}
			if err := res.Store.Append(ctx, []core.TrainingRecord{rec}); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			got, err := res.Store.ReadAll(ctx)
			if err != nil || len(got) != 1 || got[0].Units != 3 {
				t.Fatalf("ReadAll() = %+v, %v", got, err)
			}
		})
	}
}
