package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handlink/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedSession(t *testing.T, s *store.Store, id string, started time.Time) {
	t.Helper()

	if err := s.Sessions().Create(&store.Session{ID: id, StartedAt: started, ServiceVersion: "5.1.0", Plugins: "snap"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	counts := []store.Count{
		{InteractionType: "PUSH", InputType: "MOVE", Count: 40},
		{InteractionType: "PUSH", InputType: "DOWN", Count: 2},
	}
	if err := s.Counts().Add(id, counts); err != nil {
		t.Fatalf("failed to add counts: %v", err)
	}
	transitions := []store.Transition{
		{Category: "tracking", State: "CONNECTED", At: started},
		{Category: "presence", State: "HAND_FOUND", At: started.Add(time.Second)},
	}
	if err := s.Transitions().Add(id, transitions); err != nil {
		t.Fatalf("failed to add transitions: %v", err)
	}
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	t.Run("returns empty list when no sessions exist", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 0 {
			t.Errorf("expected 0 sessions, got %d", len(response.Sessions))
		}
	})

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, s, "older", base)
	seedSession(t, s, "newer", base.Add(time.Hour))

	t.Run("returns sessions newest first with totals", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(response.Sessions))
		}
		if response.Sessions[0].ID != "newer" {
			t.Errorf("expected newest session first, got %s", response.Sessions[0].ID)
		}
		if response.Sessions[0].Total != 42 {
			t.Errorf("expected 42 total actions, got %d", response.Sessions[0].Total)
		}
		if response.Sessions[0].EndedAt != "" {
			t.Errorf("expected open session, got endedAt %q", response.Sessions[0].EndedAt)
		}
	})

	t.Run("honours limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions?limit=1", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 1 {
			t.Errorf("expected 1 session, got %d", len(response.Sessions))
		}
	})

	t.Run("rejects invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions?limit=abc", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("rejects POST on collection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	seedSession(t, s, "sess-1", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	t.Run("returns counts and transitions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response sessionDetailResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.ID != "sess-1" {
			t.Errorf("expected id sess-1, got %s", response.ID)
		}
		if response.ServiceVersion != "5.1.0" {
			t.Errorf("expected service version 5.1.0, got %s", response.ServiceVersion)
		}
		if len(response.Counts) != 2 {
			t.Errorf("expected 2 counts, got %d", len(response.Counts))
		}
		if len(response.Transitions) != 2 {
			t.Fatalf("expected 2 transitions, got %d", len(response.Transitions))
		}
		if response.Transitions[0].State != "CONNECTED" {
			t.Errorf("expected first transition CONNECTED, got %s", response.Transitions[0].State)
		}
	})

	t.Run("returns 404 for unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}

		var response errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Error == "" {
			t.Error("expected error message")
		}
	})
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	seedSession(t, s, "sess-1", time.Now())

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if _, err := s.Sessions().GetByID("sess-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/sessions/sess-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
