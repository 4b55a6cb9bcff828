package rules

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/store"
)

var errStoreDown = errors.New("store unavailable")

// fakeDocument is one record held by the fake store.
type fakeDocument struct {
	fields map[string]any
	perms  []acl.Permission
}

// fakeStore is an in-memory document store implementing the same
// per-document atomicity contract as the Postgres store: Create reports a
// conflict when the id exists, Patch merges fields and replaces the
// permission list.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]*fakeDocument

	createCalls int
	patchCalls  int

	failCreate bool
	failPatch  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*fakeDocument)}
}

func key(collection, id string) string {
	return collection + "/" + id
}

func (f *fakeStore) Create(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) (store.CreateOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.failCreate {
		return 0, errStoreDown
	}

	k := key(collection, id)
	if _, exists := f.docs[k]; exists {
		return store.OutcomeConflict, nil
	}

	doc := &fakeDocument{fields: make(map[string]any), perms: perms}
	for name, v := range fields {
		doc.fields[name] = v
	}
	f.docs[k] = doc
	return store.OutcomeCreated, nil
}

func (f *fakeStore) Patch(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.patchCalls++
	if f.failPatch {
		return errStoreDown
	}

	k := key(collection, id)
	doc, exists := f.docs[k]
	if !exists {
		return fmt.Errorf("%w: %s", store.ErrNotFound, k)
	}

	for name, v := range fields {
		doc.fields[name] = v
	}
	doc.perms = perms
	return nil
}

// seed inserts a document directly, bypassing call counters.
func (f *fakeStore) seed(collection, id string, fields map[string]any, perms []acl.Permission) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := &fakeDocument{fields: make(map[string]any), perms: perms}
	for name, v := range fields {
		doc.fields[name] = v
	}
	f.docs[key(collection, id)] = doc
}

func (f *fakeStore) get(collection, id string) *fakeDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[key(collection, id)]
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}
