package model

// ConsultationRequest is a visitor-submitted lead inquiry. It is built once
// from the incoming form data and never mutated or persisted; its lifetime is
// the single dispatch call that handles it.
type ConsultationRequest struct {
	FirstName string
	LastName  string
	Email     string
	// Phone is optional; when present it must match a loose phone grammar.
	Phone   string
	Message string
	// CUIT is the optional Argentine tax id supplied inside the
	// additional-fields block of the form.
	CUIT string
	// AdditionalData is free text shown in the notification only when
	// HasAdditionalFields is set and the text is non-empty.
	AdditionalData      string
	HasAdditionalFields bool
	// Attachment is the optional uploaded document; nil when the form had
	// no file part.
	Attachment *Attachment
}

// FullName returns the requester's display name as used in email subjects
// and the confirmation greeting.
func (r ConsultationRequest) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Attachment is an uploaded file normalized into a transport-agnostic
// payload. It is owned by its ConsultationRequest and discarded after the
// notification attempt.
type Attachment struct {
	Filename string
	MimeType string
	Size     int64
	Content  []byte
}
