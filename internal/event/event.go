// Package event parses trigger-event payloads delivered by the document
// platform into typed snapshots. Parsing and validation are the single
// explicit step between the wire and the rule components.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tagged validation errors. The API layer maps all of these to 400-class
// responses; they are never retried.
var (
	ErrMalformedPayload = errors.New("payload is not valid JSON")
	ErrMissingID        = errors.New("document id is missing")
	ErrMissingPrincipal = errors.New("client or driver id is missing")
)

// JobRequest is the document snapshot carried by a job-request lifecycle
// event. The snapshot is the full document as it existed at trigger time.
// Fields this service does not act on are intentionally not modeled.
type JobRequest struct {
	ID                string `json:"$id"`
	ClientID          string `json:"clientId"`
	DriverID          string `json:"driverId"`
	Status            string `json:"status"`
	EstimatedPickupAt string `json:"estimatedPickupAt"`
}

// ParseJobRequest decodes a raw event payload into a JobRequest snapshot.
// It validates JSON shape only; field-presence requirements differ per
// component and are checked by the caller.
func ParseJobRequest(payload []byte) (*JobRequest, error) {
	var jr JobRequest
	if err := json.Unmarshal(payload, &jr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &jr, nil
}

// RequireID fails with ErrMissingID when the snapshot has no document id.
func (jr *JobRequest) RequireID() error {
	if jr.ID == "" {
		return ErrMissingID
	}
	return nil
}

// RequirePrincipals fails with ErrMissingPrincipal when either party id
// is empty.
func (jr *JobRequest) RequirePrincipals() error {
	if jr.ClientID == "" || jr.DriverID == "" {
		return fmt.Errorf("%w: clientId=%q driverId=%q", ErrMissingPrincipal, jr.ClientID, jr.DriverID)
	}
	return nil
}
