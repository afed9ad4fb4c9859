package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ayoubcharbel/telegram-bot/analytics"
	"github.com/ayoubcharbel/telegram-bot/backup"
	"github.com/ayoubcharbel/telegram-bot/leaderboard"
	"github.com/ayoubcharbel/telegram-bot/model"
	"github.com/ayoubcharbel/telegram-bot/store"
)

func newTestServer(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()

	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"), 0)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ranker := leaderboard.New(s, nil)
	tracker := analytics.New()
	backups := backup.New(s, t.TempDir(), 0)

	h := NewAdminHandler(ranker, tracker, backups, nil)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/leaderboard", h.Leaderboard).Methods("GET")
	r.HandleFunc("/analytics", h.Analytics).Methods("GET")
	r.HandleFunc("/backups", h.CreateBackup).Methods("POST")
	r.HandleFunc("/backups", h.ListBackups).Methods("GET")
	r.HandleFunc("/backups/{name}/restore", h.RestoreBackup).Methods("POST")
	return r, s
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	router, s := newTestServer(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, 1, model.UserPatch{Username: "alice", MessageDelta: 15}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, 2, model.UserPatch{Username: "bob", MessageDelta: 11}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Limit   int                      `json:"limit"`
		Entries []model.LeaderboardEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Username != "alice" || resp.Entries[0].Rank != 1 {
		t.Errorf("entries = %+v", resp.Entries)
	}
}

func TestLeaderboardInvalidLimit(t *testing.T) {
	router, _ := newTestServer(t)

	for _, q := range []string{"limit=abc", "limit=-1", "limit=0"} {
		req := httptest.NewRequest(http.MethodGet, "/leaderboard?"+q, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestBackupRoundTrip(t *testing.T) {
	router, s := newTestServer(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, 1, model.UserPatch{MessageDelta: 3}); err != nil {
		t.Fatal(err)
	}

	// Create
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backups", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var info model.BackupInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}

	// Mutate, then restore through the API.
	if _, err := s.Upsert(ctx, 2, model.UserPatch{MessageDelta: 1}); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backups/"+info.Name+"/restore", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if _, err := s.Get(ctx, 2); err != store.ErrNotFound {
		t.Errorf("user added after backup survived restore: err = %v", err)
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backups/backup_19990101_000000.json/restore", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var snap model.AnalyticsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if snap.TotalInteractions != 0 {
		t.Errorf("TotalInteractions = %d, want 0", snap.TotalInteractions)
	}
}
