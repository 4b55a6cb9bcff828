package model

import (
	"time"

	"github.com/ridepool/reactor/internal/event"
)

// Terminal job-request statuses. Anything else (PENDING, IN_PROGRESS, ...)
// is transient and ignored by the projector.
const (
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// Notification type constants, derived 1:1 from the terminal status.
const (
	TypeJobAccepted = "JOB_ACCEPTED"
	TypeJobRejected = "JOB_REJECTED"
)

// ReadStateUnread is the initial read state of every notification. A
// separate mark-as-read flow owns later transitions.
const ReadStateUnread = "UNREAD"

// IsTerminalStatus reports whether a job-request status triggers
// notification projection.
func IsTerminalStatus(status string) bool {
	return status == StatusAccepted || status == StatusRejected
}

// NotificationID derives the idempotency key for a (job request, terminal
// status) pair. At most one notification document ever exists per key.
func NotificationID(jobRequestID, status string) string {
	return jobRequestID + "_" + status
}

// Notification is the client-facing record projected from a terminal
// job-request transition. It is owned entirely by this service.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	JobRequestID string    `json:"jobRequestId"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	ReadState    string    `json:"readState"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProjectNotification derives the notification for a terminal job-request
// snapshot. Every field is a deterministic function of the snapshot and
// the upsert timestamp, so re-projection of the same event converges on
// the same record regardless of delivery order.
func ProjectNotification(jr *event.JobRequest, now time.Time) *Notification {
	n := &Notification{
		ID:           NotificationID(jr.ID, jr.Status),
		UserID:       jr.ClientID,
		JobRequestID: jr.ID,
		ReadState:    ReadStateUnread,
		CreatedAt:    now.UTC(),
	}

	switch jr.Status {
	case StatusAccepted:
		n.Type = TypeJobAccepted
		n.Title = "Trip accepted"
		if jr.EstimatedPickupAt != "" {
			n.Body = "ETA pickup: " + jr.EstimatedPickupAt
		}
	case StatusRejected:
		n.Type = TypeJobRejected
		n.Title = "Trip rejected"
	}

	return n
}

// Fields returns the document field-patch written to the store on both the
// create and the refresh path.
func (n *Notification) Fields() map[string]any {
	return map[string]any{
		"userId":       n.UserID,
		"jobRequestId": n.JobRequestID,
		"type":         n.Type,
		"title":        n.Title,
		"body":         n.Body,
		"readState":    n.ReadState,
		"createdAt":    n.CreatedAt.Format(time.RFC3339),
	}
}
