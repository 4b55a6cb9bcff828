package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/event"
	"github.com/ridepool/reactor/internal/store"
)

// AccessTightener reacts to job-request creation. New documents are born
// with the creator's broad permissions; this component replaces them with
// the minimal canonical set so only the two involved parties can reach the
// document. Reapplying the same set is a no-op in effect, so redelivery of
// the creation event is safe without any dedup.
type AccessTightener struct {
	store      store.Store
	collection string
	logger     *zap.Logger
}

// NewAccessTightener creates the component. collection identifies the
// job-request collection in the document store.
func NewAccessTightener(s store.Store, collection string, logger *zap.Logger) *AccessTightener {
	return &AccessTightener{
		store:      s,
		collection: collection,
		logger:     logger,
	}
}

// Handle processes one creation event. Validation failures return tagged
// 400-class errors; store failures propagate unmodified so the
// dispatcher's redelivery policy can decide what to do.
func (t *AccessTightener) Handle(ctx context.Context, payload []byte) (Result, error) {
	jr, err := event.ParseJobRequest(payload)
	if err != nil {
		return Result{}, err
	}
	if err := jr.RequireID(); err != nil {
		return Result{}, err
	}
	if err := jr.RequirePrincipals(); err != nil {
		return Result{}, err
	}

	perms, err := acl.ForJobRequest(jr.ClientID, jr.DriverID)
	if err != nil {
		return Result{}, err
	}

	// Empty field patch: the update replaces the permission list and
	// touches nothing else on the document.
	if err := t.store.Patch(ctx, t.collection, jr.ID, nil, perms); err != nil {
		return Result{}, fmt.Errorf("tighten permissions for %s: %w", jr.ID, err)
	}

	t.logger.Info("job request permissions tightened",
		zap.String("job_request_id", jr.ID),
		zap.String("client_id", jr.ClientID),
		zap.String("driver_id", jr.DriverID),
	)

	return ok(), nil
}
