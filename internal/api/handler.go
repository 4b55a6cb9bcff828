package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/event"
	"github.com/ridepool/reactor/internal/metrics"
	"github.com/ridepool/reactor/internal/rules"
)

// maxPayloadBytes bounds the accepted document snapshot size.
const maxPayloadBytes = 1 << 20

// EventHandler is what the hook endpoints invoke. Both rule components
// satisfy it.
type EventHandler interface {
	Handle(ctx context.Context, payload []byte) (rules.Result, error)
}

// OutcomeResponse is the tri-state acknowledgement returned to the event
// dispatcher on ok and skip. Errors use ErrorResponse instead.
type OutcomeResponse struct {
	Outcome        string `json:"outcome"`
	NotificationID string `json:"notification_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
	RequestID      string `json:"request_id"`
}

// ErrorResponse represents an error in problem+json format
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Handler holds dependencies for the hook endpoints.
type Handler struct {
	logger    *zap.Logger
	tightener EventHandler
	projector EventHandler
}

// NewHandler creates the hook handler.
func NewHandler(logger *zap.Logger, tightener, projector EventHandler) *Handler {
	return &Handler{
		logger:    logger,
		tightener: tightener,
		projector: projector,
	}
}

// JobRequestCreated handles POST /v1/hooks/job-requests/created.
// The body is the full job-request document snapshot at creation time.
func (h *Handler) JobRequestCreated(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "job-requests-created", h.tightener)
}

// JobRequestUpdated handles POST /v1/hooks/job-requests/updated.
// The body is the full job-request document snapshot after the update.
func (h *Handler) JobRequestUpdated(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "job-requests-updated", h.projector)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, hook string, handler EventHandler) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		metrics.RecordEvent(hook, "error")
		h.writeError(w, http.StatusBadRequest, "unreadable_payload", "Could not read event payload", err.Error())
		return
	}

	result, err := handler.Handle(r.Context(), payload)
	if err != nil {
		status := http.StatusInternalServerError
		errType := "store_error"
		if isClientError(err) {
			status = http.StatusBadRequest
			errType = "invalid_payload"
		}

		h.logger.Error("hook failed",
			zap.String("hook", hook),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err),
		)
		metrics.RecordEvent(hook, "error")
		h.writeError(w, status, errType, "Event processing failed", err.Error())
		return
	}

	resp := OutcomeResponse{
		Outcome:   string(result.Outcome),
		RequestID: requestID,
	}

	switch result.Outcome {
	case rules.OutcomeSkip:
		resp.Reason = result.Reason
		h.logger.Info("hook skipped",
			zap.String("hook", hook),
			zap.String("request_id", requestID),
			zap.String("reason", result.Reason),
		)
		metrics.RecordEvent(hook, "skip")

	default:
		resp.NotificationID = result.NotificationID
		h.logger.Info("hook applied",
			zap.String("hook", hook),
			zap.String("request_id", requestID),
			zap.String("notification_id", result.NotificationID),
		)
		metrics.RecordEvent(hook, "ok")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// isClientError reports whether the failure is a 400-class input fault
// the dispatcher should not redeliver.
func isClientError(err error) bool {
	return errors.Is(err, event.ErrMalformedPayload) ||
		errors.Is(err, event.ErrMissingID) ||
		errors.Is(err, event.ErrMissingPrincipal) ||
		errors.Is(err, acl.ErrInvalidInput)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
