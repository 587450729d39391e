package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"coachpay/internal/core"
	"coachpay/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestParseValues(t *testing.T) {
	values := [][]interface{}{
		{"Nombre", "Apellidos", "Categoria", "Rol", "Horas entrenadas", "Partidos casa", "Partidos fuera", "Mes"},
		{"Ana", "Lopez", "escuela", "Principal", float64(4), "1", "", "Enero"},
		{},
		{" Luis ", "Gil", "junior masculino", "Ayudante", "2", "0", "0", "Febrero"},
	}
	got, err := parseValues(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Units != 4 || got[0].HomeGames != 1 || got[0].AwayGames != 0 {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].FirstName != "Luis" || got[1].Role != core.Ayudante || got[1].Month != core.Febrero {
		t.Fatalf("unexpected second record: %+v", got[1])
	}

	if _, err := parseValues(nil); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty sheet, got %v", err)
	}
}

func TestRecordValuesHeader(t *testing.T) {
	rec := core.TrainingRecord{FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Enero, Units: 1}
	with := recordValues([]core.TrainingRecord{rec}, true)
	if len(with) != 2 || with[0][0] != sheets.ColFirstName {
		t.Fatalf("expected header then row, got %v", with)
	}
	without := recordValues([]core.TrainingRecord{rec}, false)
	if len(without) != 1 || without[0][0] != "Ana" {
		t.Fatalf("expected a single data row, got %v", without)
	}
}

// fakeSheets serves the three values endpoints used by Client from an
// in-memory grid.
type fakeSheets struct {
	mu   sync.Mutex
	rows [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		f.rows = nil
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{MajorDimension: "ROWS", Values: f.rows})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithHTTPClient(srv.Client()),
		goption.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-id", ""), fake
}

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	if _, err := c.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty sheet, got %v", err)
	}

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	batch := []core.TrainingRecord{
		{ID: "a", FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Marzo, Units: 3, CreatedAt: created},
	}
	if err := c.Append(ctx, batch); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := c.Append(ctx, batch); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if len(fake.rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d rows", len(fake.rows))
	}

	got, err := c.ReadAll(ctx)
	if err != nil || len(got) != 2 || got[1].Units != 3 {
		t.Fatalf("unexpected read: %+v %v", got, err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := c.ReadAll(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestClientAppendRejectsInvalid(t *testing.T) {
	c, fake := newTestClient(t)
	err := c.Append(context.Background(), []core.TrainingRecord{{FirstName: "Ana"}})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fake.rows) != 0 {
		t.Fatalf("nothing should be written for an invalid batch")
	}
}

func TestClientAppendUpgradesLegacyHeader(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	fake.rows = [][]interface{}{
		{"Nombre", "Apellidos", "Categoria", "Rol", "Horas entrenadas", "Partidos casa", "Partidos fuera", "Mes", "Fecha registro"},
		{"Luis", "Gil", "escuela", "Ayudante", "4", "0", "1", "Abril", "2025-04-30 10:00:00"},
	}

	created := time.Date(2025, 5, 2, 9, 15, 0, 0, time.Local)
	err := c.Append(ctx, []core.TrainingRecord{
		{ID: "n1", FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Mayo, Units: 2, Days: []int{3, 5}, CreatedAt: created},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(fake.rows) != 3 || len(fake.rows[0]) != len(sheets.RecordHeader) {
		t.Fatalf("expected upgraded header plus two rows, got %v", fake.rows)
	}

	got, err := c.ReadAll(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("read: %+v %v", got, err)
	}
	if got[0].FirstName != "Luis" || got[0].CreatedAt.IsZero() {
		t.Fatalf("legacy row damaged: %+v", got[0])
	}
	if got[1].ID != "n1" || len(got[1].Days) != 2 || !got[1].CreatedAt.Equal(created) {
		t.Fatalf("new row misplaced: %+v", got[1])
	}
}
