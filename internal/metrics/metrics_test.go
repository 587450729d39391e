package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManagerCounters(t *testing.T) {
	m := NewManager()

	m.RecordSubmission(3)
	m.RecordSubmission(2)
	m.RecordRejection()
	m.RecordPaymentRun("Enero", 4)
	m.RecordPaymentRun("Enero", 2)
	m.SetSyncPending(7)
	m.RecordSyncError("append")

	if got := testutil.ToFloat64(m.recordsSubmitted); got != 5 {
		t.Fatalf("records submitted = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.submissionsRejected); got != 1 {
		t.Fatalf("rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.paymentRuns.WithLabelValues("Enero")); got != 2 {
		t.Fatalf("payment runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.paymentRows.WithLabelValues("Enero")); got != 2 {
		t.Fatalf("payment rows gauge = %v, want the last value 2", got)
	}
	if got := testutil.ToFloat64(m.syncPending); got != 7 {
		t.Fatalf("sync pending = %v, want 7", got)
	}
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	m.RecordSubmission(1)
	m.RecordRejection()
	m.RecordClear()
	m.RecordPaymentRun("Enero", 1)
	m.SetSyncPending(1)
	m.RecordSynced(1)
	m.RecordSyncError("clear")
	m.RecordHTTPRequest("/", "GET", 200, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewManager(WithSubsystem("app"))
	m.RecordHTTPRequest("/records", "POST", 422, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	want := `coachpay_app_http_requests_total{method="POST",route="/records",status_code="422"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("expected %q in exposition, got:\n%s", want, body)
	}
}
