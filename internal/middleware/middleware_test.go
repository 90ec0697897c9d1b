package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
)

func testMiddleware(origins ...string) *Middleware {
	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = origins
	return New(logger.New("disabled", "json"), cfg)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	mw := testMiddleware("*")

	var seen string
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("POST", "/api/consultations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Error("request ID should be generated and stored in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("request ID should be echoed in the response header")
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	mw := testMiddleware("*")

	handler := mw.RequestID(okHandler())

	req := httptest.NewRequest("POST", "/api/consultations", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "client-supplied-id" {
		t.Errorf("got %q, want the client-supplied id", rec.Header().Get("X-Request-ID"))
	}
}

func TestCORS_Preflight(t *testing.T) {
	mw := testMiddleware("https://portalnegocios.test")

	handler := mw.CORS(okHandler())

	req := httptest.NewRequest("OPTIONS", "/api/consultations", nil)
	req.Header.Set("Origin", "https://portalnegocios.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://portalnegocios.test" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should advertise allowed methods")
	}
}

func TestCORS_DisallowedOriginGetsNoHeader(t *testing.T) {
	mw := testMiddleware("https://portalnegocios.test")

	handler := mw.CORS(okHandler())

	req := httptest.NewRequest("POST", "/api/consultations", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin must not receive an allow-origin header")
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	mw := testMiddleware("*")

	handler := mw.CORS(okHandler())

	req := httptest.NewRequest("POST", "/api/consultations", nil)
	req.Header.Set("Origin", "https://anything.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "https://anything.test" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	mw := testMiddleware("*")

	handler := mw.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("POST", "/api/consultations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	mw := testMiddleware("*")

	handler := mw.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, middleware must not alter it", rec.Code)
	}
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusBadRequest)
	rw.Write([]byte(`{"success":false}`))

	if rw.statusCode != http.StatusBadRequest {
		t.Errorf("statusCode = %d, want 400", rw.statusCode)
	}
	if rw.bytes != int64(len(`{"success":false}`)) {
		t.Errorf("bytes = %d", rw.bytes)
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.Write([]byte("ok"))

	if rw.statusCode != http.StatusOK {
		t.Errorf("implicit status = %d, want 200", rw.statusCode)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{"forwarded single", "203.0.113.7", "", "203.0.113.7"},
		{"forwarded chain keeps first hop", "203.0.113.7, 10.0.0.1, 10.0.0.2", "", "203.0.113.7"},
		{"real ip fallback", "", "203.0.113.9", "203.0.113.9"},
		{"remote addr fallback", "", "", "192.0.2.1:1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/consultations", nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
