package core

import (
	"math/rand"
	"testing"
	"time"
)

func rec(first, last string, role Role, month Month, units, home, away int) TrainingRecord {
	return TrainingRecord{
		FirstName: first,
		LastName:  last,
		Category:  "escuela",
		Role:      role,
		Month:     month,
		Units:     units,
		HomeGames: home,
		AwayGames: away,
	}
}

func TestRecordPayFormula(t *testing.T) {
	cases := []struct {
		name string
		r    TrainingRecord
		want string
	}{
		{"principal", rec("A", "B", Principal, Enero, 10, 2, 1), "138"},
		{"ayudante ignores away", rec("A", "B", Ayudante, Enero, 10, 2, 1), "80"},
		{"unknown role", rec("A", "B", Role("Delegado"), Enero, 10, 2, 1), "0"},
		{"zero", rec("A", "B", Principal, Enero, 0, 0, 0), "0"},
	}
	for _, tc := range cases {
		got := RecordPay(tc.r)
		if got.String() != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestComputePaymentsMixedRoles(t *testing.T) {
	records := []TrainingRecord{
		rec("Ana", "Lopez", Principal, Marzo, 5, 0, 0),
		rec("Ana", "Lopez", Ayudante, Marzo, 5, 0, 0),
	}
	got := ComputePayments(records, Marzo)
	if len(got) != 1 {
		t.Fatalf("expected one payee, got %d", len(got))
	}
	if got[0].Total.String() != "70" {
		t.Fatalf("expected 70, got %s", got[0].Total)
	}
	if got[0].Units != 10 {
		t.Fatalf("expected 10 units, got %d", got[0].Units)
	}
}

func TestComputePaymentsFiltersPeriod(t *testing.T) {
	records := []TrainingRecord{
		rec("Ana", "Lopez", Principal, Marzo, 5, 0, 0),
		rec("Ana", "Lopez", Principal, Abril, 7, 1, 0),
		rec("Luis", "Gil", Ayudante, Abril, 3, 0, 0),
	}
	got := ComputePayments(records, Marzo)
	if len(got) != 1 || got[0].FirstName != "Ana" || got[0].Total.String() != "40" {
		t.Fatalf("unexpected march payments: %+v", got)
	}
	got = ComputePayments(records, Abril)
	if len(got) != 2 {
		t.Fatalf("expected two payees in april, got %+v", got)
	}
	if got[0].Total.String() != "72" || got[1].Total.String() != "18" {
		t.Fatalf("unexpected april totals: %s %s", got[0].Total, got[1].Total)
	}
}

func TestComputePaymentsEmpty(t *testing.T) {
	if got := ComputePayments(nil, Enero); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	records := []TrainingRecord{rec("Ana", "Lopez", Principal, Marzo, 5, 0, 0)}
	if got := ComputePayments(records, Junio); len(got) != 0 {
		t.Fatalf("expected no rows for june, got %+v", got)
	}
}

func TestComputePaymentsGroupsByNormalizedName(t *testing.T) {
	records := []TrainingRecord{
		rec("Jose", "Perez", Principal, Mayo, 1, 0, 0),
		rec("JOSÉ", "pérez", Principal, Mayo, 1, 0, 0),
		rec(" jose ", "Perez ", Principal, Mayo, 1, 0, 0),
	}
	got := ComputePayments(records, Mayo)
	if len(got) != 1 {
		t.Fatalf("expected a single payee, got %+v", got)
	}
	if got[0].FirstName != "Jose" || got[0].Total.String() != "24" {
		t.Fatalf("unexpected row: %+v", got[0])
	}
}

func TestComputePaymentsFirstSeenOrder(t *testing.T) {
	records := []TrainingRecord{
		rec("Zoe", "Z", Principal, Enero, 1, 0, 0),
		rec("Ana", "A", Principal, Enero, 1, 0, 0),
		rec("Zoe", "Z", Principal, Enero, 1, 0, 0),
	}
	got := ComputePayments(records, Enero)
	if len(got) != 2 || got[0].FirstName != "Zoe" || got[1].FirstName != "Ana" {
		t.Fatalf("expected first-seen order, got %+v", got)
	}
}

func TestComputePaymentsOrderIndependentTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	names := []string{"Ana", "Luis", "Marta"}
	roles := []Role{Principal, Ayudante, "otro"}
	var records []TrainingRecord
	for i := 0; i < 60; i++ {
		records = append(records, rec(names[rng.Intn(3)], "X", roles[rng.Intn(3)], Month(1+rng.Intn(2)),
			rng.Intn(20), rng.Intn(4), rng.Intn(4)))
	}
	totals := func(rows []PaymentSummary) map[string]string {
		m := map[string]string{}
		for _, r := range rows {
			m[r.FirstName] = r.Total.String()
		}
		return m
	}
	want := totals(ComputePayments(records, Enero))
	for round := 0; round < 5; round++ {
		shuffled := append([]TrainingRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := totals(ComputePayments(shuffled, Enero))
		if len(got) != len(want) {
			t.Fatalf("payee count changed: %v vs %v", got, want)
		}
		for k, v := range want {
			if got[k] != v {
				t.Fatalf("total for %s changed after shuffle: %s vs %s", k, got[k], v)
			}
		}
	}
}

func TestAvailableMonths(t *testing.T) {
	records := []TrainingRecord{
		rec("A", "B", Principal, Octubre, 1, 0, 0),
		rec("A", "B", Principal, Febrero, 1, 0, 0),
		rec("A", "B", Principal, Octubre, 1, 0, 0),
		rec("A", "B", Principal, Month(0), 1, 0, 0),
	}
	got := AvailableMonths(records)
	if len(got) != 2 || got[0] != Febrero || got[1] != Octubre {
		t.Fatalf("unexpected months: %v", got)
	}
}

func TestGrandTotal(t *testing.T) {
	rows := ComputePayments([]TrainingRecord{
		rec("A", "B", Principal, Enero, 10, 2, 1),
		rec("C", "D", Ayudante, Enero, 10, 2, 1),
	}, Enero)
	if got := GrandTotal(rows).String(); got != "218" {
		t.Fatalf("expected 218, got %s", got)
	}
}
