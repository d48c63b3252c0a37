package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benvon/ordia/internal/models"
)

func TestUpsertLog_LastWriteWins(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	token := api.signup("a@x.com")

	rr := api.do(http.MethodPost, "/logs/", token, map[string]any{"date": "2026-03-01T08:00:00Z", "content": "first", "mood": "tired"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var first models.DailyLog
	decodeBody(t, rr, &first)

	rr = api.do(http.MethodPost, "/logs", token, map[string]any{"date": "2026-03-01T21:15:00Z", "content": "second"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var second models.DailyLog
	decodeBody(t, rr, &second)

	if second.ID != first.ID {
		t.Errorf("Expected the same log to be overwritten, got ids %s and %s", first.ID, second.ID)
	}
	if second.Content != "second" {
		t.Errorf("Expected content 'second', got %q", second.Content)
	}
	if second.Mood != nil {
		t.Errorf("Expected mood cleared by the second write, got %q", *second.Mood)
	}

	rr = api.do(http.MethodGet, "/logs/", token, nil)
	var logs []models.DailyLog
	decodeBody(t, rr, &logs)
	if len(logs) != 1 {
		t.Fatalf("Expected exactly one log for the day, got %d", len(logs))
	}
	if logs[0].Content != "second" {
		t.Errorf("Expected stored content 'second', got %q", logs[0].Content)
	}
}

func TestUpsertLog_SeparateDays(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	token := api.signup("a@x.com")

	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03T12:00:00"} {
		rr := api.do(http.MethodPost, "/logs/", token, map[string]any{"date": date, "content": "entry " + date})
		if rr.Code != http.StatusOK {
			t.Fatalf("POST %s: expected status 200, got %d: %s", date, rr.Code, rr.Body.String())
		}
	}

	rr := api.do(http.MethodGet, "/logs/", token, nil)
	var logs []models.DailyLog
	decodeBody(t, rr, &logs)
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(logs))
	}
	if !strings.HasSuffix(logs[0].Content, "2026-03-03T12:00:00") {
		t.Errorf("Expected most recent day first, got %q", logs[0].Content)
	}
}

func TestGetLog(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	alice := api.signup("alice@x.com")
	bob := api.signup("bob@x.com")

	rr := api.do(http.MethodPost, "/logs/", alice, map[string]any{"date": "2026-03-01T10:00:00Z", "content": "made tea"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = api.do(http.MethodGet, "/logs/2026-03-01", alice, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var log models.DailyLog
	decodeBody(t, rr, &log)
	if log.Content != "made tea" {
		t.Errorf("Expected content 'made tea', got %q", log.Content)
	}
	if y, m, d := log.Date.UTC().Date(); y != 2026 || m != time.March || d != 1 {
		t.Errorf("Expected log dated 2026-03-01, got %v", log.Date)
	}

	tests := []struct {
		name  string
		token string
		path  string
	}{
		{"day without a log", alice, "/logs/2026-03-02"},
		{"another user's day", bob, "/logs/2026-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := api.do(http.MethodGet, tt.path, tt.token, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != "null" {
				t.Errorf("Expected null body, got %s", got)
			}
		})
	}
}

func TestLogs_Validation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	token := api.signup("a@x.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed path date", http.MethodGet, "/logs/yesterday", nil},
		{"missing date", http.MethodPost, "/logs/", map[string]any{"content": "x"}},
		{"missing content", http.MethodPost, "/logs/", map[string]any{"date": "2026-03-01"}},
		{"malformed body date", http.MethodPost, "/logs/", map[string]any{"date": "03/01/2026", "content": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := api.do(tt.method, tt.path, token, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpsertLog_EmptyContentAllowed(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	token := api.signup("a@x.com")

	rr := api.do(http.MethodPost, "/logs/", token, map[string]any{"date": "2026-03-01", "content": ""})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpsertLog_ServerLocation(t *testing.T) {
	t.Parallel()

	// An offset no host runs in, so the server location never equals time.Local
	loc := time.FixedZone("server", 13*3600+45*60)
	api := newTestAPIIn(t, loc)
	token := api.signup("a@x.com")

	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"no offset is read in the server location", "2026-02-16T23:30:00", time.Date(2026, 2, 16, 23, 30, 0, 0, loc)},
		{"offset keeps the submitted wall clock", "2026-02-17T08:00:00+09:00", time.Date(2026, 2, 17, 8, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(http.MethodPost, "/logs/", token, map[string]any{"date": tt.date, "content": tt.name})
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var log models.DailyLog
			decodeBody(t, rr, &log)
			if !log.Date.Equal(tt.want) {
				t.Errorf("stored date = %v, want %v", log.Date, tt.want)
			}

			rr = api.do(http.MethodGet, "/logs/"+tt.want.Format(models.DateLayout), token, nil)
			var got *models.DailyLog
			decodeBody(t, rr, &got)
			if got == nil || got.Content != tt.name {
				t.Errorf("GET /logs/%s = %+v, want the log just written", tt.want.Format(models.DateLayout), got)
			}
		})
	}
}
