package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]models.JournalEntry
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]models.JournalEntry{}}
}

func (m *memStore) SaveEntry(e models.JournalEntry) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = "id-" + e.EntryDate
	e.DayNumber = len(m.entries) + 1
	m.entries[e.EntryDate] = e
	return e, nil
}

func (m *memStore) GetEntry(date string) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[date]
	if !ok {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *memStore) ListEntries(bool) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JournalEntry
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) GetEntriesByDay() (models.EntriesByDay, error) {
	list, _ := m.ListEntries(false)
	byDay := models.EntriesByDay{}
	for _, e := range list {
		byDay[e.DayNumber] = e
	}
	return byDay, nil
}

func (m *memStore) GetReviewsByWeek() (models.ReviewsByWeek, error) {
	return models.ReviewsByWeek{}, nil
}

func setupServer(t *testing.T, cfg Config) (*Server, *httptest.Server, func()) {
	t.Helper()
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())
	return s, ts, func() {
		s.Close()
		ts.Close()
	}
}

func get(t *testing.T, url, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func post(t *testing.T, url, token, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, string(out)
}

func TestHealth(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{})
	defer cleanup()

	resp, body := get(t, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("GET /health = %d %s", resp.StatusCode, body)
	}
}

func TestJournalPageLoad(t *testing.T) {
	var mu sync.Mutex
	var triggers []string
	src := entries.Static{EntriesByDay: models.EntriesByDay{1: {Gratitude: "Morning coffee"}}}

	_, ts, cleanup := setupServer(t, Config{
		Source: src,
		OnRun: func(trigger string, _ journal.Result, _ time.Duration, _ error) {
			mu.Lock()
			triggers = append(triggers, trigger)
			mu.Unlock()
		},
	})
	defer cleanup()

	resp, _ := get(t, ts.URL+"/journal/current", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /journal/current before render = %d, want 404", resp.StatusCode)
	}

	resp, body := get(t, ts.URL+"/journal", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /journal = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	for _, want := range []string{`<div id="journal-content">`, `data-page="019"`, "Morning coffee"} {
		if !strings.Contains(body, want) {
			t.Errorf("journal missing %q", want)
		}
	}

	resp, current := get(t, ts.URL+"/journal/current", "")
	if resp.StatusCode != http.StatusOK || current != body {
		t.Errorf("GET /journal/current = %d, want the rendered document", resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(triggers) != 1 || triggers[0] != "page-load" {
		t.Errorf("observed triggers = %v, want [page-load]", triggers)
	}
}

func TestMessageTrigger(t *testing.T) {
	s, ts, cleanup := setupServer(t, Config{})
	defer cleanup()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"accepted", `{"type":"JOURNAL_ENTRIES","entriesByDay":{"3":{"mood":"😊 Happy"}}}`, http.StatusOK, `"pages":134`},
		{"ignored", `{"type":"PING"}`, http.StatusAccepted, `"status":"ignored"`},
		{"malformed", `{"type":`, http.StatusBadRequest, `"error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts.URL+"/api/journal/messages", "", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", body, tt.wantBody)
			}
		})
	}

	if _, ok := s.Assembler().Last(); !ok {
		t.Error("accepted message did not render a journal")
	}
	if !strings.Contains(string(s.target.Bytes()), "😊 Happy") {
		t.Error("rendered journal missing the message's mood")
	}
}

func TestGenerateRequiresToken(t *testing.T) {
	store := newMemStore()
	if _, err := store.SaveEntry(models.JournalEntry{EntryDate: "2026-01-01", Gratitude: "Sun"}); err != nil {
		t.Fatal(err)
	}
	_, ts, cleanup := setupServer(t, Config{Store: store, Token: "secret"})
	defer cleanup()

	if resp, _ := get(t, ts.URL+"/api/journal/generate", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET without token = %d, want 401", resp.StatusCode)
	}
	if resp, _ := get(t, ts.URL+"/api/journal/generate", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET with wrong token = %d, want 401", resp.StatusCode)
	}

	resp, body := get(t, ts.URL+"/api/journal/generate", "secret")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET with token = %d", resp.StatusCode)
	}
	b, err := entries.Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b.EntriesByDay[1].Gratitude != "Sun" {
		t.Errorf("fetched day 1 = %+v", b.EntriesByDay[1])
	}
	if !strings.Contains(body, `"entries":[`) {
		t.Errorf("fetch envelope missing entries list: %s", body)
	}
}

func TestHTTPSourceReadsGenerateEndpoint(t *testing.T) {
	store := newMemStore()
	if _, err := store.SaveEntry(models.JournalEntry{EntryDate: "2026-01-01", Reflection: "Calm"}); err != nil {
		t.Fatal(err)
	}
	_, ts, cleanup := setupServer(t, Config{Store: store, Token: "secret"})
	defer cleanup()

	b, err := entries.NewHTTPSource(ts.URL+"/api/journal/generate", "secret").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b.EntriesByDay[1].Reflection != "Calm" {
		t.Errorf("day 1 reflection = %q, want Calm", b.EntriesByDay[1].Reflection)
	}
}

func TestEntriesAPI(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{Store: newMemStore()})
	defer cleanup()

	_, body := get(t, ts.URL+"/api/journal/entries?date=2026-01-01", "")
	if !strings.Contains(body, `"entry":null`) {
		t.Errorf("GET missing entry = %s, want null entry", body)
	}

	resp, body := post(t, ts.URL+"/api/journal/entries", "", `{"entry_date":"2026-01-01","priority_1":"Ship"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST entry = %d %s", resp.StatusCode, body)
	}

	_, body = get(t, ts.URL+"/api/journal/entries?date=2026-01-01", "")
	var got struct {
		Entry models.JournalEntry `json:"entry"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid response %s: %v", body, err)
	}
	if got.Entry.Priority1 != "Ship" || got.Entry.ID == "" {
		t.Errorf("GET entry = %+v", got.Entry)
	}

	if resp, _ := post(t, ts.URL+"/api/journal/entries", "", `{"entry_date":"01/01/2026"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("POST invalid date = %d, want 400", resp.StatusCode)
	}
}

func TestEntriesAPIWithoutStore(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{})
	defer cleanup()

	if resp, _ := get(t, ts.URL+"/api/journal/entries?date=2026-01-01", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET entries without store = %d, want 503", resp.StatusCode)
	}
}

func TestPagesListing(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{})
	defer cleanup()

	_, body := get(t, ts.URL+"/api/journal/pages", "")
	var got struct {
		Pages []journal.PageListing `json:"pages"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(got.Pages) != 134 {
		t.Fatalf("listed %d pages, want 134", len(got.Pages))
	}
	if p := got.Pages[18]; p.Anchor != "day-1" || p.Label != "019" {
		t.Errorf("page 19 = %+v, want day-1", p)
	}
}

func TestRateLimit(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{RateLimit: 0.001, RateBurst: 1})
	defer cleanup()

	msg := `{"type":"PING"}`
	if resp, _ := post(t, ts.URL+"/api/journal/messages", "", msg); resp.StatusCode != http.StatusAccepted {
		t.Errorf("first POST = %d, want 202", resp.StatusCode)
	}
	if resp, _ := post(t, ts.URL+"/api/journal/messages", "", msg); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", resp.StatusCode)
	}
	if resp, _ := get(t, ts.URL+"/health", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health under limit = %d, want 200", resp.StatusCode)
	}
}

func TestWebsocketMessages(t *testing.T) {
	_, ts, cleanup := setupServer(t, Config{})
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// ignored frames get no reply, so the next reply belongs to the entries frame
	frames := []string{
		`{"type":"PING"}`,
		`{"type":"JOURNAL_ENTRIES","entriesByDay":{"1":{"gratitude":"Friends"}}}`,
		`{"type":`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
	}

	var rendered wsReply
	if err := conn.ReadJSON(&rendered); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if rendered.Type != "JOURNAL_RENDERED" || rendered.Pages != 134 {
		t.Errorf("first reply = %+v, want JOURNAL_RENDERED with 134 pages", rendered)
	}

	var failed wsReply
	if err := conn.ReadJSON(&failed); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if failed.Type != "ERROR" || failed.Error == "" {
		t.Errorf("second reply = %+v, want ERROR", failed)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
