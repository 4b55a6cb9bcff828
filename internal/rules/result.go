// Package rules holds the two reactive components triggered by job-request
// lifecycle events: the access tightener (creation) and the notification
// projector (update). Both are stateless; all state lives in the document
// store.
package rules

// Outcome is the tri-state result surfaced to the event dispatcher.
// Errors are the third state and travel on the error return.
type Outcome string

const (
	// OutcomeOK means the effect was applied.
	OutcomeOK Outcome = "ok"
	// OutcomeSkip means preconditions were not met and nothing was
	// written. A skip is a legitimate no-op, not an error.
	OutcomeSkip Outcome = "skip"
)

// Result reports what a component invocation did.
type Result struct {
	Outcome Outcome

	// NotificationID is the derived idempotency key, set by the projector
	// on an ok outcome.
	NotificationID string

	// Reason explains a skip. Empty on ok.
	Reason string
}

func ok() Result {
	return Result{Outcome: OutcomeOK}
}

func skip(reason string) Result {
	return Result{Outcome: OutcomeSkip, Reason: reason}
}
