// Package acl computes the canonical per-document permission sets for
// job requests and notifications. It is pure: no I/O, no clock, no state.
package acl

import (
	"errors"
	"fmt"
)

// Action is a document-level capability granted to a single user.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrInvalidInput indicates a principal id required by the policy was
// empty or missing. Callers map it to a 400-class response.
var ErrInvalidInput = errors.New("invalid principal id")

// Permission grants one action to one user.
type Permission struct {
	Action Action `json:"action"`
	UserID string `json:"userId"`
}

// String renders the grant in the platform's permission-string form,
// e.g. `read("user:c1")`. Used for logging only.
func (p Permission) String() string {
	return fmt.Sprintf("%s(%q)", p.Action, "user:"+p.UserID)
}

// Read grants read access to a user.
func Read(userID string) Permission { return Permission{Action: ActionRead, UserID: userID} }

// Update grants update access to a user.
func Update(userID string) Permission { return Permission{Action: ActionUpdate, UserID: userID} }

// Delete grants delete access to a user.
func Delete(userID string) Permission { return Permission{Action: ActionDelete, UserID: userID} }

// ForJobRequest returns the canonical permission set for a job request:
// both parties may read and update, only the client may delete.
func ForJobRequest(clientID, driverID string) ([]Permission, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientId is empty", ErrInvalidInput)
	}
	if driverID == "" {
		return nil, fmt.Errorf("%w: driverId is empty", ErrInvalidInput)
	}
	return []Permission{
		Read(clientID),
		Read(driverID),
		Update(clientID),
		Update(driverID),
		Delete(clientID),
	}, nil
}

// ForNotification returns the canonical permission set for a notification:
// the addressed user is the only principal.
func ForNotification(userID string) ([]Permission, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is empty", ErrInvalidInput)
	}
	return []Permission{
		Read(userID),
		Update(userID),
		Delete(userID),
	}, nil
}
