package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerRecordsCreated(2).
		TriggerFormReset().
		BodyHTML("<p>ok</p>").
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if string(triggers["records:created"]) != `{"count":2}` {
		t.Fatalf("records:created = %s", triggers["records:created"])
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Fatal("missing form:reset trigger")
	}
}

func TestMessageResponseEscapes(t *testing.T) {
	rec := httptest.NewRecorder()
	UnprocessableEntityWarning(`<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") || !strings.Contains(body, `class="warning"`) {
		t.Fatalf("unexpected body %q", body)
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Fatal("no triggers expected")
	}
}
