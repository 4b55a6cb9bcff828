package model

import (
	"testing"
	"time"

	"github.com/ridepool/reactor/internal/event"
)

var projectionTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNotificationID(t *testing.T) {
	if got := NotificationID("jr1", "ACCEPTED"); got != "jr1_ACCEPTED" {
		t.Errorf("expected jr1_ACCEPTED, got %s", got)
	}
	if got := NotificationID("jr1", "REJECTED"); got != "jr1_REJECTED" {
		t.Errorf("expected jr1_REJECTED, got %s", got)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"ACCEPTED":    true,
		"REJECTED":    true,
		"PENDING":     false,
		"IN_PROGRESS": false,
		"":            false,
	} {
		if got := IsTerminalStatus(status); got != want {
			t.Errorf("IsTerminalStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestProjectNotification_Accepted(t *testing.T) {
	jr := &event.JobRequest{
		ID:                "jr1",
		ClientID:          "c1",
		DriverID:          "d1",
		Status:            "ACCEPTED",
		EstimatedPickupAt: "2024-01-01T10:00:00Z",
	}

	n := ProjectNotification(jr, projectionTime)

	if n.ID != "jr1_ACCEPTED" {
		t.Errorf("expected id jr1_ACCEPTED, got %s", n.ID)
	}
	if n.UserID != "c1" {
		t.Errorf("expected userId c1, got %s", n.UserID)
	}
	if n.JobRequestID != "jr1" {
		t.Errorf("expected jobRequestId jr1, got %s", n.JobRequestID)
	}
	if n.Type != TypeJobAccepted {
		t.Errorf("expected type JOB_ACCEPTED, got %s", n.Type)
	}
	if n.Title != "Trip accepted" {
		t.Errorf("unexpected title: %s", n.Title)
	}
	if n.Body != "ETA pickup: 2024-01-01T10:00:00Z" {
		t.Errorf("unexpected body: %s", n.Body)
	}
	if n.ReadState != ReadStateUnread {
		t.Errorf("expected readState UNREAD, got %s", n.ReadState)
	}
}

func TestProjectNotification_AcceptedWithoutPickupEstimate(t *testing.T) {
	jr := &event.JobRequest{ID: "jr1", ClientID: "c1", Status: "ACCEPTED"}

	n := ProjectNotification(jr, projectionTime)
	if n.Body != "" {
		t.Errorf("expected empty body without estimate, got %q", n.Body)
	}
}

func TestProjectNotification_Rejected(t *testing.T) {
	jr := &event.JobRequest{
		ID:                "jr2",
		ClientID:          "c1",
		Status:            "REJECTED",
		EstimatedPickupAt: "2024-01-01T10:00:00Z",
	}

	n := ProjectNotification(jr, projectionTime)

	if n.Type != TypeJobRejected {
		t.Errorf("expected type JOB_REJECTED, got %s", n.Type)
	}
	if n.Title != "Trip rejected" {
		t.Errorf("unexpected title: %s", n.Title)
	}
	// A rejection never carries a pickup ETA, even if the snapshot has one.
	if n.Body != "" {
		t.Errorf("expected empty body for rejection, got %q", n.Body)
	}
}

func TestProjectNotification_Deterministic(t *testing.T) {
	jr := &event.JobRequest{ID: "jr1", ClientID: "c1", Status: "ACCEPTED", EstimatedPickupAt: "T"}

	a := ProjectNotification(jr, projectionTime)
	b := ProjectNotification(jr, projectionTime)
	if *a != *b {
		t.Errorf("projection is not deterministic: %+v vs %+v", a, b)
	}
}

func TestNotificationFields(t *testing.T) {
	jr := &event.JobRequest{ID: "jr1", ClientID: "c1", Status: "ACCEPTED", EstimatedPickupAt: "T"}
	fields := ProjectNotification(jr, projectionTime).Fields()

	if fields["userId"] != "c1" {
		t.Errorf("unexpected userId: %v", fields["userId"])
	}
	if fields["readState"] != "UNREAD" {
		t.Errorf("unexpected readState: %v", fields["readState"])
	}
	if fields["createdAt"] != "2024-03-01T12:00:00Z" {
		t.Errorf("unexpected createdAt: %v", fields["createdAt"])
	}
}
