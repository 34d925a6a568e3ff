package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wsconn "github.com/coder/websocket"

	"github.com/dukerupert/reciperescue/internal/database"
	"github.com/dukerupert/reciperescue/internal/middleware"
	"github.com/dukerupert/reciperescue/internal/model"
)

const testKitchen = "0d8f5d8a-4b8e-4f53-8d0c-2b8a1f6e9c21"

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestStateIssuesSession(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookieName {
		t.Fatalf("cookies = %v", cookies)
	}

	var st struct {
		ID      string     `json:"id"`
		View    model.View `json:"view"`
		Premium bool       `json:"premium"`
	}
	json.NewDecoder(rec.Body).Decode(&st)
	if st.ID != cookies[0].Value || st.View != model.ViewInventory || st.Premium {
		t.Errorf("state = %+v", st)
	}
}

func TestAIEndpointsUnconfigured(t *testing.T) {
	srv := newTestServer(t, Config{})
	k := srv.Kitchens().Get(testKitchen)
	k.AddManual("Eggs", "")

	req := httptest.NewRequest("POST", "/api/recipes", strings.NewReader(`{}`))
	req.Header.Set(middleware.SessionHeader, testKitchen)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAIEndpointsRateLimited(t *testing.T) {
	srv := newTestServer(t, Config{AIRequestsPerMinute: 1})
	router := srv.Router()

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest("POST", "/api/recipes", strings.NewReader(`{}`))
		req.Header.Set(middleware.SessionHeader, testKitchen)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}

	if codes[0] == http.StatusTooManyRequests {
		t.Error("first request was rate limited")
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", codes[1])
	}
}

func TestPushRoutesDisabledWithoutKeys(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/push/vapid-key", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if srv.PushScheduler() != nil {
		t.Error("scheduler created without VAPID keys")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest("OPTIONS", "/api/inventory", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestOriginHosts(t *testing.T) {
	got := originHosts([]string{"https://app.example.com", "http://localhost:5173", "not a url", "*"})
	want := []string{"app.example.com", "localhost:5173", "*"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("originHosts = %v, want %v", got, want)
	}
}

func TestWebSocketReceivesKitchenEvents(t *testing.T) {
	srv := newTestServer(t, Config{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set(middleware.SessionHeader, testKitchen)
	conn, _, err := wsconn.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", &wsconn.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(wsconn.StatusNormalClosure, "")

	for srv.Hub().KitchenClientCount(testKitchen) == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", ts.URL+"/api/inventory", strings.NewReader(`{"name":"Milk"}`))
	req.Header.Set(middleware.SessionHeader, testKitchen)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("add ingredient: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev model.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != model.EventInventoryChanged {
		t.Errorf("event type = %q, want %q", ev.Type, model.EventInventoryChanged)
	}
}
