package rules

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/event"
	"github.com/ridepool/reactor/internal/metrics"
	"github.com/ridepool/reactor/internal/model"
	"github.com/ridepool/reactor/internal/store"
)

// NotificationProjector reacts to job-request updates. When the status
// transitions to a terminal value it upserts the derived notification for
// the client; every other update is a skip.
//
// Idempotency comes from the deterministic notification id plus a
// two-phase upsert: try create, and when the id already exists fall back
// to patching the same document with the same derived fields. Concurrent
// deliveries of the same event race benignly — both derive identical
// fields, so the final document is the same whichever invocation wins the
// create.
type NotificationProjector struct {
	store      store.Store
	collection string
	logger     *zap.Logger

	// now is swapped in tests for deterministic createdAt values.
	now func() time.Time
}

// NewNotificationProjector creates the component. collection identifies
// the notification collection in the document store.
func NewNotificationProjector(s store.Store, collection string, logger *zap.Logger) *NotificationProjector {
	return &NotificationProjector{
		store:      s,
		collection: collection,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle processes one update event. Incomplete snapshots and
// non-terminal statuses return a skip result without touching the store.
func (p *NotificationProjector) Handle(ctx context.Context, payload []byte) (Result, error) {
	jr, err := event.ParseJobRequest(payload)
	if err != nil {
		return Result{}, err
	}

	if jr.ID == "" || jr.ClientID == "" || jr.Status == "" {
		return skip("snapshot missing id, clientId, or status"), nil
	}
	if !model.IsTerminalStatus(jr.Status) {
		return skip(fmt.Sprintf("status %q is not terminal", jr.Status)), nil
	}

	perms, err := acl.ForNotification(jr.ClientID)
	if err != nil {
		return Result{}, err
	}

	notif := model.ProjectNotification(jr, p.now())
	fields := notif.Fields()

	outcome, err := p.store.Create(ctx, p.collection, notif.ID, fields, perms)
	if err != nil {
		return Result{}, fmt.Errorf("create notification %s: %w", notif.ID, err)
	}

	switch outcome {
	case store.OutcomeCreated:
		metrics.RecordNotificationUpsert("created")
		p.logger.Info("notification created",
			zap.String("notification_id", notif.ID),
			zap.String("job_request_id", jr.ID),
			zap.String("type", notif.Type),
		)

	case store.OutcomeConflict:
		// Redelivery or a corrected snapshot for the same terminal
		// status: refresh the existing document with the rederived
		// fields. readState is reissued UNREAD on this path.
		if err := p.store.Patch(ctx, p.collection, notif.ID, fields, perms); err != nil {
			return Result{}, fmt.Errorf("refresh notification %s: %w", notif.ID, err)
		}
		metrics.RecordNotificationUpsert("refreshed")
		p.logger.Info("notification refreshed",
			zap.String("notification_id", notif.ID),
			zap.String("job_request_id", jr.ID),
		)

	default:
		return Result{}, fmt.Errorf("unexpected create outcome %v for %s", outcome, notif.ID)
	}

	res := ok()
	res.NotificationID = notif.ID
	return res, nil
}
