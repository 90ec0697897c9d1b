// Package validate checks consultation requests before any transport work.
// All checks are pure: no I/O, no side effects.
package validate

import (
	"regexp"
	"strings"

	"github.com/portalnegocios/intake/internal/model"
)

// Field error reasons
const (
	ReasonRequired      = "required"
	ReasonInvalidFormat = "invalid_format"
)

var (
	// emailPattern matches the address grammar the public form enforces:
	// no whitespace or extra @, and a dotted domain.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// phonePattern is deliberately loose: optional leading +, then at
	// least ten digits, spaces, dashes or parentheses.
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)
)

// ValidationResult carries the complete set of field errors found in one
// pass. Callers receive every violated field at once, not just the first.
type ValidationResult struct {
	OK          bool
	FieldErrors map[string]string
}

// Consultation validates a consultation request. The first matching rule per
// field wins; fields are checked independently of each other.
func Consultation(req model.ConsultationRequest) ValidationResult {
	errs := make(map[string]string)

	if strings.TrimSpace(req.FirstName) == "" {
		errs["firstName"] = ReasonRequired
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs["lastName"] = ReasonRequired
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs["email"] = ReasonRequired
	} else if !emailPattern.MatchString(email) {
		errs["email"] = ReasonInvalidFormat
	}

	// Phone is optional; only a present, malformed value is an error.
	if phone := strings.TrimSpace(req.Phone); phone != "" && !phonePattern.MatchString(phone) {
		errs["phone"] = ReasonInvalidFormat
	}

	if strings.TrimSpace(req.Message) == "" {
		errs["message"] = ReasonRequired
	}

	if len(errs) == 0 {
		return ValidationResult{OK: true}
	}
	return ValidationResult{OK: false, FieldErrors: errs}
}
