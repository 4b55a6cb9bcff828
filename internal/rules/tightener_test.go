package rules

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
	"github.com/ridepool/reactor/internal/event"
	"github.com/ridepool/reactor/internal/store"
)

const jobRequestsCol = "job_requests"

func jobRequestPerms(t *testing.T) []acl.Permission {
	t.Helper()
	perms, err := acl.ForJobRequest("c1", "d1")
	if err != nil {
		t.Fatalf("building canonical set: %v", err)
	}
	return perms
}

func TestAccessTightener_AppliesCanonicalPermissions(t *testing.T) {
	fs := newFakeStore()
	fs.seed(jobRequestsCol, "jr1", map[string]any{"status": "PENDING"}, nil)

	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())
	res, err := tightener.Handle(context.Background(), []byte(`{"$id":"jr1","clientId":"c1","driverId":"d1","status":"PENDING"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeOK {
		t.Fatalf("expected ok outcome, got %s", res.Outcome)
	}

	doc := fs.get(jobRequestsCol, "jr1")
	want := jobRequestPerms(t)
	if len(doc.perms) != len(want) {
		t.Fatalf("expected %d permissions, got %d", len(want), len(doc.perms))
	}
	for i, p := range want {
		if doc.perms[i] != p {
			t.Errorf("permission %d: expected %v, got %v", i, p, doc.perms[i])
		}
	}

	// The empty field patch must not alter any document field.
	if doc.fields["status"] != "PENDING" {
		t.Errorf("document fields changed: %v", doc.fields)
	}
}

func TestAccessTightener_Idempotent(t *testing.T) {
	fs := newFakeStore()
	fs.seed(jobRequestsCol, "jr1", nil, nil)

	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())
	payload := []byte(`{"$id":"jr1","clientId":"c1","driverId":"d1"}`)

	if _, err := tightener.Handle(context.Background(), payload); err != nil {
		t.Fatalf("first application failed: %v", err)
	}
	after1 := fs.get(jobRequestsCol, "jr1").perms

	if _, err := tightener.Handle(context.Background(), payload); err != nil {
		t.Fatalf("second application failed: %v", err)
	}
	after2 := fs.get(jobRequestsCol, "jr1").perms

	if len(after1) != len(after2) {
		t.Fatalf("permission set changed on reapplication: %v vs %v", after1, after2)
	}
	for i := range after1 {
		if after1[i] != after2[i] {
			t.Errorf("permission %d changed on reapplication", i)
		}
	}
}

func TestAccessTightener_MalformedPayload(t *testing.T) {
	fs := newFakeStore()
	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())

	_, err := tightener.Handle(context.Background(), []byte(`not json`))
	if !errors.Is(err, event.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if fs.patchCalls != 0 {
		t.Error("store must not be touched on a malformed payload")
	}
}

func TestAccessTightener_MissingID(t *testing.T) {
	fs := newFakeStore()
	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())

	_, err := tightener.Handle(context.Background(), []byte(`{"clientId":"c1","driverId":"d1"}`))
	if !errors.Is(err, event.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if fs.patchCalls != 0 {
		t.Error("store must not be touched when the id is missing")
	}
}

func TestAccessTightener_MissingPrincipal(t *testing.T) {
	fs := newFakeStore()
	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())

	cases := []struct {
		name    string
		payload string
	}{
		{"missing driver", `{"$id":"jr1","clientId":"c1"}`},
		{"missing client", `{"$id":"jr1","driverId":"d1"}`},
		{"empty driver", `{"$id":"jr1","clientId":"c1","driverId":""}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tightener.Handle(context.Background(), []byte(tc.payload))
			if !errors.Is(err, event.ErrMissingPrincipal) {
				t.Fatalf("expected ErrMissingPrincipal, got %v", err)
			}
		})
	}

	if fs.patchCalls != 0 {
		t.Error("store must not be touched when a principal is missing")
	}
}

func TestAccessTightener_DocumentNotFound(t *testing.T) {
	fs := newFakeStore()
	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())

	_, err := tightener.Handle(context.Background(), []byte(`{"$id":"ghost","clientId":"c1","driverId":"d1"}`))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound to propagate, got %v", err)
	}
}

func TestAccessTightener_StoreFailurePropagates(t *testing.T) {
	fs := newFakeStore()
	fs.seed(jobRequestsCol, "jr1", nil, nil)
	fs.failPatch = true

	tightener := NewAccessTightener(fs, jobRequestsCol, zap.NewNop())
	_, err := tightener.Handle(context.Background(), []byte(`{"$id":"jr1","clientId":"c1","driverId":"d1"}`))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to propagate unmodified, got %v", err)
	}
}
