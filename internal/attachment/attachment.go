// Package attachment normalizes uploaded files into transport-agnostic
// payloads, enforcing the configured MIME allow-list and size ceiling.
package attachment

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/portalnegocios/intake/internal/model"
)

// ErrorKind classifies why an upload was refused.
type ErrorKind string

const (
	KindUnsupportedType ErrorKind = "unsupported_type"
	KindTooLarge        ErrorKind = "too_large"
)

// Error is a user-correctable attachment rejection.
type Error struct {
	Kind     ErrorKind
	MimeType string
	Size     int64
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedType:
		return fmt.Sprintf("attachment: unsupported type %q", e.MimeType)
	case KindTooLarge:
		return fmt.Sprintf("attachment: %d bytes exceeds the size limit", e.Size)
	}
	return "attachment: rejected"
}

// Policy is the acceptance policy for uploaded documents. The defaults are
// wired in config: a 5MB ceiling and PDF plus common image types.
type Policy struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

// Allows reports whether the policy accepts the given MIME type.
func (p Policy) Allows(mimeType string) bool {
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

// Process validates an uploaded file part against the policy and reads it
// fully into memory. The type check runs before the size check, so a
// wrong-type oversized file reports the type error. The declared header size
// is checked before reading; the actual byte count is enforced again while
// reading, since multipart headers are client-supplied.
func Process(file multipart.File, header *multipart.FileHeader, policy Policy) (*model.Attachment, error) {
	mimeType := normalizeMimeType(header.Header.Get("Content-Type"))

	if !policy.Allows(mimeType) {
		return nil, &Error{Kind: KindUnsupportedType, MimeType: mimeType}
	}
	if header.Size > policy.MaxSizeBytes {
		return nil, &Error{Kind: KindTooLarge, Size: header.Size}
	}

	// Read one byte past the ceiling so an understated header still trips
	// the size check.
	content, err := io.ReadAll(io.LimitReader(file, policy.MaxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("attachment: read upload: %w", err)
	}
	if int64(len(content)) > policy.MaxSizeBytes {
		return nil, &Error{Kind: KindTooLarge, Size: int64(len(content))}
	}

	return &model.Attachment{
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Content:  content,
	}, nil
}

// normalizeMimeType strips parameters and lowercases a Content-Type header
// value, e.g. "Image/PNG; charset=binary" -> "image/png".
func normalizeMimeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
