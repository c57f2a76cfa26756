package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "bad", map[string]any{"fields": []string{"name"}}, "req-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error.Code != "validation_error" || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if _, ok := env.Error.Details["fields"]; !ok {
		t.Fatal("expected details.fields")
	}
}

func TestSuccessOmitsError(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"n": 1}, "")
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if body := rec.Body.String(); body != "{\"success\":true,\"data\":{\"n\":1}}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", "hr report.pdf", 42)
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="hr report.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "42" {
		t.Fatalf("unexpected length %q", got)
	}

	rec = httptest.NewRecorder()
	Attachment(rec, "text/csv", "audit-events.csv", -1)
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=audit-events.csv" {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Fatal("expected no content length for streamed bodies")
	}
}
