package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecordRequest(t *testing.T) {
	RecordRequest("POST", "/v1/hooks/job-requests/created", 200, 100*time.Millisecond)
	RecordRequest("POST", "/v1/hooks/job-requests/updated", 200, 50*time.Millisecond)
	RecordRequest("POST", "/v1/hooks/job-requests/updated", 400, 10*time.Millisecond)
}

func TestRecordEvent(t *testing.T) {
	RecordEvent("job-requests-created", "ok")
	RecordEvent("job-requests-updated", "skip")
	RecordEvent("job-requests-updated", "error")
}

func TestRecordNotificationUpsert(t *testing.T) {
	RecordNotificationUpsert("created")
	RecordNotificationUpsert("refreshed")
}

func TestRecordRateLimitRejection(t *testing.T) {
	RecordRateLimitRejection()
	RecordRateLimitRejection()
}

func TestHandler(t *testing.T) {
	handler := Handler()
	if handler == nil {
		t.Fatal("Handler should not return nil")
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/job-requests/created", nil)
	rec := httptest.NewRecorder()
	Middleware(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("middleware must not change the status, got %d", rec.Code)
	}
}
