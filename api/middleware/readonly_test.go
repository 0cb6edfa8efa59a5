package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestReadOnlyBlocksMutationsBeforeHandler(t *testing.T) {
	reached := false
	handler := ReadOnly(true, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/v1/containers", nil))

		if reached {
			t.Fatalf("%s should not reach the handler in read-only mode", method)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", method, rec.Code)
		}
		var envelope responses.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if envelope.Error.Code != "READ_ONLY" {
			t.Fatalf("expected READ_ONLY code, got %s", envelope.Error.Code)
		}
	}
}

func TestReadOnlyAllowsReads(t *testing.T) {
	reached := false
	handler := ReadOnly(true, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/containers", nil))
	if !reached {
		t.Fatal("GET should pass through in read-only mode")
	}
}

func TestReadOnlyDisabledIsTransparent(t *testing.T) {
	reached := false
	handler := ReadOnly(false, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/containers", nil))
	if !reached {
		t.Fatal("POST should pass through when read-only is off")
	}
}
