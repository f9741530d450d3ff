package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleNotify(t *testing.T) {
	server := New("localhost:0")

	body := `{"message":"Envelope ID: 9f8e7d6c-5b4a-3210-fedc-ba9876543210. Your access code is: ZX9Q7A"}`
	req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.handleNotify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response notifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.EnvelopeIDs) != 1 || response.EnvelopeIDs[0] != "9f8e7d6c-5b4a-3210-fedc-ba9876543210" {
		t.Errorf("unexpected envelope ids: %v", response.EnvelopeIDs)
	}
	if len(response.AccessCodes) != 1 || response.AccessCodes[0] != "ZX9Q7A" {
		t.Errorf("unexpected access codes: %v", response.AccessCodes)
	}
}

func TestHandleNotifyEmptyMessage(t *testing.T) {
	server := New("localhost:0")

	req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(`{"message":"nothing here"}`))
	w := httptest.NewRecorder()
	server.handleNotify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even when nothing is found, got %d", w.Code)
	}
	var response notifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.EnvelopeIDs) != 0 || len(response.AccessCodes) != 0 {
		t.Errorf("expected empty candidates, got %+v", response)
	}
}

func TestHandleNotifyRejectsBadInput(t *testing.T) {
	server := New("localhost:0")

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader("not json"))
		w := httptest.NewRecorder()
		server.handleNotify(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notify", nil)
		w := httptest.NewRecorder()
		server.handleNotify(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	server := New("localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.handleHealth(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}
