package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/somnia/internal/platform/errors"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

type fakeStore struct {
	configured bool
	listed     []domain.Dream
	listErr    error
	existing   map[string]bool
	existsErr  error
	insertErr  error

	mu       sync.Mutex
	inserted []domain.Dream
}

func (f *fakeStore) Configured() bool { return f.configured }

func (f *fakeStore) List(context.Context, int) ([]domain.Dream, error) {
	return f.listed, f.listErr
}

func (f *fakeStore) Exists(_ context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[id], nil
}

func (f *fakeStore) Insert(_ context.Context, dream domain.Dream) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, dream)
	return nil
}

var testNow = time.UnixMilli(1760600000000)

func serve(t *testing.T, store Store, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := newHandler(store, handlerOptions{now: func() time.Time { return testNow }})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestUpEndpoint(t *testing.T) {
	rr := serve(t, &fakeStore{}, http.MethodGet, "/up", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "OK" {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	for _, method := range []string{http.MethodOptions, http.MethodGet, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rr := serve(t, &fakeStore{}, method, "/dreams", "{}")
			h := rr.Header()
			if h.Get("Access-Control-Allow-Origin") != "*" ||
				h.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" ||
				h.Get("Access-Control-Allow-Headers") != "Content-Type, apikey, Authorization" {
				t.Fatalf("cors headers = %v", h)
			}
		})
	}
}

func TestOptionsReturnsOK(t *testing.T) {
	rr := serve(t, &fakeStore{configured: true}, http.MethodOptions, "/api/dreams-simple", "")
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := serve(t, &fakeStore{configured: true}, http.MethodPut, "/dreams", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decode(t, rr)["error"]; got != "Method not allowed" {
		t.Fatalf("error = %v", got)
	}
}

func TestUnconfiguredStorage(t *testing.T) {
	rr := serve(t, &fakeStore{}, http.MethodGet, "/dreams", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	payload := decode(t, rr)
	if payload["message"] != "Storage not configured" {
		t.Fatalf("payload = %v", payload)
	}
	if dreams, ok := payload["dreams"].([]any); !ok || len(dreams) != 0 {
		t.Fatalf("dreams = %v", payload["dreams"])
	}

	rr = serve(t, &fakeStore{}, http.MethodPost, "/dreams", `{"text":"x"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("POST status = %d", rr.Code)
	}
	if msg, _ := decode(t, rr)["error"].(string); !strings.HasPrefix(msg, "Storage not configured") {
		t.Fatalf("error = %q", msg)
	}
}

func TestListReturnsDreamsAndTotal(t *testing.T) {
	store := &fakeStore{configured: true, listed: []domain.Dream{{ID: "b", Text: "2", TS: 2}, {ID: "a", Text: "1", TS: 1}}}
	rr := serve(t, store, http.MethodGet, "/dreams", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var payload struct {
		Dreams []domain.Dream `json:"dreams"`
		Total  int            `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 2 || len(payload.Dreams) != 2 || payload.Dreams[0].ID != "b" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestListUpstreamFailureStaysOK(t *testing.T) {
	store := &fakeStore{configured: true, listErr: apperrors.New(apperrors.CodeUpstreamRejected, "permission denied")}
	rr := serve(t, store, http.MethodGet, "/dreams", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decode(t, rr)
	if payload["error"] != "permission denied" {
		t.Fatalf("payload = %v", payload)
	}
	if dreams, ok := payload["dreams"].([]any); !ok || len(dreams) != 0 {
		t.Fatalf("dreams = %v", payload["dreams"])
	}
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{name: "missing text", body: `{"id":"x"}`, status: http.StatusBadRequest, errMsg: "Text is required"},
		{name: "empty text", body: `{"text":""}`, status: http.StatusBadRequest, errMsg: "Text is required"},
		{name: "invalid json", body: `{`, status: http.StatusBadRequest, errMsg: "Invalid JSON body"},
		{name: "wrong type", body: `{"text":5}`, status: http.StatusBadRequest, errMsg: "Invalid JSON body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{configured: true}
			rr := serve(t, store, http.MethodPost, "/dreams", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if got := decode(t, rr)["error"]; got != tc.errMsg {
				t.Fatalf("error = %v, want %q", got, tc.errMsg)
			}
			if len(store.inserted) != 0 {
				t.Fatalf("inserted = %+v", store.inserted)
			}
		})
	}
}

func TestSaveDefaultsIDAndTimestamp(t *testing.T) {
	store := &fakeStore{configured: true}
	rr := serve(t, store, http.MethodPost, "/dreams", `{"text":"hello"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decode(t, rr)
	if payload["success"] != true || payload["saved"] != true {
		t.Fatalf("payload = %v", payload)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %+v", store.inserted)
	}
	got := store.inserted[0]
	if got.ID != "dream-1760600000000" || got.TS != 1760600000000 || got.ASCII != "" {
		t.Fatalf("inserted = %+v", got)
	}
}

func TestSaveKeepsProvidedFields(t *testing.T) {
	store := &fakeStore{configured: true}
	serve(t, store, http.MethodPost, "/dreams", `{"id":"d1","text":"t","ascii":"*","ts":42}`)
	want := domain.Dream{ID: "d1", Text: "t", ASCII: "*", TS: 42}
	if len(store.inserted) != 1 || store.inserted[0] != want {
		t.Fatalf("inserted = %+v, want %+v", store.inserted, want)
	}
}

func TestSaveExistingIsNotInserted(t *testing.T) {
	store := &fakeStore{configured: true, existing: map[string]bool{"d1": true}}
	rr := serve(t, store, http.MethodPost, "/dreams", `{"id":"d1","text":"t"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decode(t, rr)
	if payload["success"] != true || payload["saved"] != false || payload["message"] != "Already exists" {
		t.Fatalf("payload = %v", payload)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("inserted = %+v", store.inserted)
	}
}

func TestSaveCheckFailureStillInserts(t *testing.T) {
	store := &fakeStore{configured: true, existsErr: errors.New("check failed")}
	rr := serve(t, store, http.MethodPost, "/dreams", `{"id":"d1","text":"t"}`)
	if rr.Code != http.StatusOK || len(store.inserted) != 1 {
		t.Fatalf("status = %d, inserted = %+v", rr.Code, store.inserted)
	}
}

func TestSaveInsertFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errMsg  string
		details string
	}{
		{
			name:    "rejected",
			err:     apperrors.New(apperrors.CodeUpstreamRejected, `{"message":"duplicate key"}`),
			errMsg:  "Failed to save dream",
			details: `{"message":"duplicate key"}`,
		},
		{
			name:   "unreachable",
			err:    apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "postgrest request failed", errors.New("dial tcp: refused")),
			errMsg: "postgrest request failed: dial tcp: refused",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{configured: true, insertErr: tc.err}
			rr := serve(t, store, http.MethodPost, "/dreams", `{"id":"d1","text":"t"}`)
			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d", rr.Code)
			}
			payload := decode(t, rr)
			if payload["error"] != tc.errMsg {
				t.Fatalf("error = %v, want %q", payload["error"], tc.errMsg)
			}
			if details, _ := payload["details"].(string); details != tc.details {
				t.Fatalf("details = %q, want %q", details, tc.details)
			}
		})
	}
}

func TestNewHandlerWithoutStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dreams", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
