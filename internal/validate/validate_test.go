package validate

import (
	"testing"

	"github.com/portalnegocios/intake/internal/model"
)

func validRequest() model.ConsultationRequest {
	return model.ConsultationRequest{
		FirstName: "Ana",
		LastName:  "Gomez",
		Email:     "ana@x.com",
		Phone:     "",
		Message:   "Busco maquinaria",
	}
}

func TestConsultation_ValidRequest(t *testing.T) {
	t.Parallel()

	res := Consultation(validRequest())
	if !res.OK {
		t.Fatalf("expected ok, got field errors: %v", res.FieldErrors)
	}
	if len(res.FieldErrors) != 0 {
		t.Errorf("expected no field errors, got %v", res.FieldErrors)
	}
}

func TestConsultation_MissingRequiredFields(t *testing.T) {
	t.Parallel()

	req := model.ConsultationRequest{
		FirstName: "   ",
		LastName:  "",
		Email:     "",
		Message:   "\t\n",
	}

	res := Consultation(req)
	if res.OK {
		t.Fatal("expected validation to fail")
	}

	for _, field := range []string{"firstName", "lastName", "email", "message"} {
		if res.FieldErrors[field] != ReasonRequired {
			t.Errorf("field %s: expected %q, got %q", field, ReasonRequired, res.FieldErrors[field])
		}
	}
	if len(res.FieldErrors) != 4 {
		t.Errorf("expected exactly 4 field errors, got %v", res.FieldErrors)
	}
}

func TestConsultation_EmailFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		valid bool
	}{
		{"ana@x.com", true},
		{"ana.gomez@empresa.com.ar", true},
		{"a+tag@b.co", true},
		{"ana@x", false},
		{"ana@", false},
		{"@x.com", false},
		{"ana gomez@x.com", false},
		{"ana@x .com", false},
	}

	for _, tc := range cases {
		req := validRequest()
		req.Email = tc.email
		res := Consultation(req)
		if tc.valid && !res.OK {
			t.Errorf("email %q: expected valid, got %v", tc.email, res.FieldErrors)
		}
		if !tc.valid && res.FieldErrors["email"] != ReasonInvalidFormat {
			t.Errorf("email %q: expected invalid_format, got %v", tc.email, res.FieldErrors)
		}
	}
}

func TestConsultation_PhoneOptional(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Phone = ""
	if res := Consultation(req); !res.OK {
		t.Errorf("absent phone should not be an error, got %v", res.FieldErrors)
	}

	req.Phone = "+54 (11) 4444-5555"
	if res := Consultation(req); !res.OK {
		t.Errorf("well-formed phone rejected: %v", res.FieldErrors)
	}

	req.Phone = "12345"
	res := Consultation(req)
	if res.OK || res.FieldErrors["phone"] != ReasonInvalidFormat {
		t.Errorf("short phone should be invalid_format, got %v", res.FieldErrors)
	}

	req.Phone = "llamame"
	res = Consultation(req)
	if res.OK || res.FieldErrors["phone"] != ReasonInvalidFormat {
		t.Errorf("non-numeric phone should be invalid_format, got %v", res.FieldErrors)
	}
}

func TestConsultation_AllErrorsReportedTogether(t *testing.T) {
	t.Parallel()

	req := model.ConsultationRequest{
		FirstName: "Ana",
		Email:     "ana@x",
		Phone:     "abc",
	}

	res := Consultation(req)
	if res.OK {
		t.Fatal("expected validation to fail")
	}
	want := map[string]string{
		"lastName": ReasonRequired,
		"email":    ReasonInvalidFormat,
		"phone":    ReasonInvalidFormat,
		"message":  ReasonRequired,
	}
	for field, reason := range want {
		if res.FieldErrors[field] != reason {
			t.Errorf("field %s: expected %q, got %q", field, reason, res.FieldErrors[field])
		}
	}
	if len(res.FieldErrors) != len(want) {
		t.Errorf("unexpected extra errors: %v", res.FieldErrors)
	}
}
