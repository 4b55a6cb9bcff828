// Package store provides the document store used by the rule components:
// a generic collection/id keyed record with a JSON body and a per-document
// permission list.
package store

import (
	"context"
	"errors"

	"github.com/ridepool/reactor/internal/acl"
)

// CreateOutcome reports how a create attempt resolved. A conflict is a
// normal outcome, not an error: the projector's upsert protocol branches
// on it with a case match instead of inspecting store error codes.
type CreateOutcome int

const (
	// OutcomeCreated means the document did not exist and was written.
	OutcomeCreated CreateOutcome = iota
	// OutcomeConflict means a document with that id already exists and
	// nothing was written.
	OutcomeConflict
)

func (o CreateOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ErrNotFound is returned by Patch when the target document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is the per-document atomic contract the rule components run on.
// Each call is one store operation; no multi-document transactions.
type Store interface {
	// Create writes a new document with the given fields and permission
	// list. If a document with that id already exists it reports
	// OutcomeConflict and leaves the existing document untouched.
	Create(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) (CreateOutcome, error)

	// Patch merges fields into an existing document's body and replaces
	// its permission list. An empty or nil fields map is a
	// permission-only update. Returns ErrNotFound if the document does
	// not exist.
	Patch(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) error
}
