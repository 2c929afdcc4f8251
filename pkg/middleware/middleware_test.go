package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

func TestRequestLoggerRecordsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var handlerReqID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerReqID = middleware.GetReqID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	srv := middleware.RequestID(RequestLogger(logger)(handler))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/configlets", nil))

	if handlerReqID == "" {
		t.Fatal("expected RequestID middleware to assign a request ID")
	}

	var entry struct {
		RequestID  string `json:"request_id"`
		StatusCode int    `json:"status_code"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	if entry.RequestID != handlerReqID {
		t.Errorf("logged request_id = %q, want %q", entry.RequestID, handlerReqID)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("logged status_code = %d, want %d", entry.StatusCode, http.StatusOK)
	}
}

func TestAuthenticatorRequiresClaims(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	handler := jwtauth.Verifier(ja)(AuthenticatorWithRequiredClaims(ja, []string{"sub"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/configlets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected %d without a token, got %d", http.StatusUnauthorized, rec.Code)
	}

	_, noSub, err := ja.Encode(map[string]interface{}{"aud": "configlet-builder"})
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/configlets", nil)
	req.Header.Set("Authorization", "Bearer "+noSub)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected %d for token missing sub claim, got %d", http.StatusUnauthorized, rec.Code)
	}

	_, token, err := ja.Encode(map[string]interface{}{"sub": "operator"})
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/configlets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected %d with valid token, got %d", http.StatusNoContent, rec.Code)
	}
}
