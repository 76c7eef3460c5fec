package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

type fakeApp struct {
	mu       sync.Mutex
	commands []control.Command
	subs     []chan app.Action
}

func (f *fakeApp) Status() app.Status {
	return app.Status{Running: true, Mode: gesture.Pointer, Calibration: store.CalibrationFrom(gesture.DefaultThresholds())}
}

func (f *fakeApp) Submit(cmd control.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakeApp) Subscribe(buffer int) (<-chan app.Action, func()) {
	ch := make(chan app.Action, buffer)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch, func() {}
}

func (f *fakeApp) publish(act app.Action) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- act
	}
	return len(f.subs)
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	// Create a temporary directory with a static file
	tmpDir, err := os.MkdirTemp("", "mudra-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a test HTML file
	testContent := "<html><body>Hello, World!</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Create a CSS file for testing direct file access
	cssContent := "body { color: red; }"
	if err := os.WriteFile(filepath.Join(tmpDir, "style.css"), []byte(cssContent), 0644); err != nil {
		t.Fatalf("failed to create test CSS file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	t.Run("serves index.html at root path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		if rec.Body.String() != testContent {
			t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
		}
	})

	t.Run("serves static files from configured directory", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/style.css", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		if rec.Body.String() != cssContent {
			t.Errorf("expected body %q, got %q", cssContent, rec.Body.String())
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})

	t.Run("root path returns 404 when no static dir configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		cfg := Config{StaticDir: "/some/path"}
		s := New(cfg)

		if s == nil {
			t.Fatal("expected non-nil server")
		}

		if s.config.StaticDir != cfg.StaticDir {
			t.Errorf("expected StaticDir %s, got %s", cfg.StaticDir, s.config.StaticDir)
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}

func TestServer_Routes(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	ctl := &fakeApp{}
	s := New(Config{App: ctl, Store: st})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/status", "", http.StatusOK},
		{http.MethodGet, "/api/mode", "", http.StatusOK},
		{http.MethodPut, "/api/mode", `{"mode":"scroll"}`, http.StatusAccepted},
		{http.MethodPost, "/api/pause", "", http.StatusAccepted},
		{http.MethodPost, "/api/resume", "", http.StatusAccepted},
		{http.MethodGet, "/api/calibration", "", http.StatusOK},
		{http.MethodGet, "/api/journal", "", http.StatusOK},
		{http.MethodGet, "/api/sessions", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if len(ctl.commands) != 3 {
		t.Errorf("got %d commands, want 3", len(ctl.commands))
	}
}

func TestServer_NoStoreRoutes(t *testing.T) {
	s := New(Config{App: &fakeApp{}})

	req := httptest.NewRequest(http.MethodGet, "/api/journal", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_Events(t *testing.T) {
	ctl := &fakeApp{}
	ts := httptest.NewServer(New(Config{App: ctl}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type string `json:"type"`
		Data struct {
			Mode string `json:"mode"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if first.Type != "status" || first.Data.Mode != "pointer" {
		t.Errorf("unexpected first message %+v", first)
	}

	// The status message is written after Subscribe, so the subscriber exists.
	if n := ctl.publish(app.Action{Kind: "left_click", Mode: "pointer", Origin: "gesture"}); n != 1 {
		t.Fatalf("got %d subscribers, want 1", n)
	}

	var next struct {
		Type string     `json:"type"`
		Data app.Action `json:"data"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read action: %v", err)
	}
	if next.Type != "action" || next.Data.Kind != "left_click" {
		t.Errorf("unexpected action message %+v", next)
	}
}
