package circuitbreaker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/store"
)

// ProtectedStore wraps a document store with a CircuitBreaker. When the
// store is down the wrapper fails fast with ErrCircuitOpen, which the API
// layer surfaces as a 500-class response; the dispatcher's redelivery
// policy takes it from there. The breaker never retries.
type ProtectedStore struct {
	store   store.Store
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewProtectedStore wraps a store with breaker protection.
func NewProtectedStore(s store.Store, breaker *CircuitBreaker, logger *zap.Logger) *ProtectedStore {
	return &ProtectedStore{
		store:   s,
		breaker: breaker,
		logger:  logger,
	}
}

// Create attempts a document create through the breaker. A conflict
// outcome is a healthy store response and counts as success.
func (p *ProtectedStore) Create(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) (store.CreateOutcome, error) {
	if !p.breaker.Allow() {
		p.logRejection("create", collection, id)
		return 0, fmt.Errorf("%w: %s", ErrCircuitOpen, p.breaker.config.Name)
	}

	outcome, err := p.store.Create(ctx, collection, id, fields, perms)
	if err != nil {
		p.breaker.RecordFailure()
		return 0, err
	}

	p.breaker.RecordSuccess()
	return outcome, nil
}

// Patch attempts a document patch through the breaker. ErrNotFound means
// the store answered, so it counts as success for breaker purposes.
func (p *ProtectedStore) Patch(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) error {
	if !p.breaker.Allow() {
		p.logRejection("patch", collection, id)
		return fmt.Errorf("%w: %s", ErrCircuitOpen, p.breaker.config.Name)
	}

	err := p.store.Patch(ctx, collection, id, fields, perms)
	if err != nil && !isDocumentError(err) {
		p.breaker.RecordFailure()
		return err
	}

	p.breaker.RecordSuccess()
	return err
}

func (p *ProtectedStore) logRejection(op, collection, id string) {
	p.logger.Warn("circuit breaker rejected store operation",
		zap.String("breaker", p.breaker.config.Name),
		zap.String("op", op),
		zap.String("collection", collection),
		zap.String("document_id", id),
		zap.String("state", p.breaker.GetState().String()),
	)
}

// isDocumentError distinguishes per-document answers from store health
// failures.
func isDocumentError(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
