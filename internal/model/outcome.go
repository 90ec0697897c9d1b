package model

// Status is the terminal verdict of handling a consultation.
type Status string

const (
	// StatusAccepted means the business notification was delivered (or
	// synthesized in simulated mode); the requester is told the
	// consultation was received.
	StatusAccepted Status = "accepted"
	// StatusRejected means validation or attachment checks failed; no
	// transport call was made.
	StatusRejected Status = "rejected"
	// StatusFailed means the mandatory business notification could not be
	// delivered; the request failed end-to-end.
	StatusFailed Status = "failed"
)

// Outcome is the full result of dispatching one consultation.
type Outcome struct {
	Status Status
	// FieldErrors maps field name to reason ("required", "invalid_format")
	// when Status is StatusRejected.
	FieldErrors map[string]string
	// Notification is the result of the mandatory business-facing send.
	Notification DispatchResult
	// ConfirmationAttempted reports whether the best-effort client
	// confirmation was tried at all. It is false whenever the notification
	// send did not succeed.
	ConfirmationAttempted bool
	// ConfirmationSent reports whether the confirmation actually went out.
	// A false value never changes Status: confirmation failures are
	// absorbed.
	ConfirmationSent bool
}
