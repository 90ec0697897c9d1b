package model

// EmailMessage is a fully composed email, produced by the composer and
// consumed exactly once by a transport.
type EmailMessage struct {
	To       string
	From     string
	FromName string
	// ReplyTo is set on notification emails so the business inbox can
	// reply straight to the requester. Empty on confirmations.
	ReplyTo    string
	Subject    string
	HTMLBody   string
	TextBody   string
	Attachment *Attachment
}

// ErrorKind classifies a failed delivery attempt.
type ErrorKind string

const (
	// ErrorKindNone marks a successful delivery.
	ErrorKindNone ErrorKind = ""
	// ErrorKindUnavailable means the transport session could not be
	// established or verified.
	ErrorKindUnavailable ErrorKind = "transport_unavailable"
	// ErrorKindTimeout means the delivery attempt exceeded its bounded
	// timeout.
	ErrorKindTimeout ErrorKind = "transport_timeout"
	// ErrorKindSendFailed means the session was up but the protocol-level
	// send failed.
	ErrorKindSendFailed ErrorKind = "send_failed"
)

// DispatchResult is the outcome of a single delivery attempt. There is
// exactly one per EmailMessage send; deliveries are never retried
// automatically within a request.
type DispatchResult struct {
	Success   bool
	MessageID string
	ErrorKind ErrorKind
	Err       error
}
