package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// feedSource yields whatever hand was last fed, once, and NoHand otherwise.
type feedSource struct {
	hands chan detector.HandLandmarks
}

func (f *feedSource) Next(ctx context.Context) (detector.Observation, error) {
	select {
	case h := <-f.hands:
		return detector.HandObservation(h, 640, 480)
	default:
		return detector.NoHand(), nil
	}
}

func (f *feedSource) Rate() int    { return 200 }
func (f *feedSource) Close() error { return nil }

type harness struct {
	store    *store.Store
	app      *app.App
	recorder *control.Recorder
	feed     *feedSource
	ts       *httptest.Server
	done     chan error
}

func start(t *testing.T) *harness {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rec := control.NewRecorder()
	m, err := control.NewMachine(rec, gesture.Dimensions{Width: 1920, Height: 1080}, gesture.DefaultThresholds())
	require.NoError(t, err)

	feed := &feedSource{hands: make(chan detector.HandLandmarks, 8)}
	a := app.New(app.Config{
		Source:     feed,
		Machine:    m,
		Store:      s,
		SourceName: "feed",
		SinkName:   "recorder",
		Logger:     logging.Discard(),
	})

	ts := httptest.NewServer(server.New(server.Config{Store: s, App: a, Logger: logging.Discard()}))
	t.Cleanup(ts.Close)

	h := &harness{store: s, app: a, recorder: rec, feed: feed, ts: ts, done: make(chan error, 1)}
	go func() { h.done <- a.Run(context.Background()) }()

	require.Eventually(t, func() bool { return a.Status().Running }, 2*time.Second, 5*time.Millisecond)
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	require.NoError(t, h.app.Submit(control.Quit("test")))
	select {
	case err := <-h.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func (h *harness) request(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := h.ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func hasOp(rec *control.Recorder, op control.Op) bool {
	for _, o := range rec.Ops() {
		if o == op {
			return true
		}
	}
	return false
}

func TestE2E_PointerClickAndScrollOverride(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := start(t)

	h.feed.hands <- detector.PointAt(0.5, 0.5)
	require.Eventually(t, func() bool { return hasOp(h.recorder, control.OpMove) }, 2*time.Second, 5*time.Millisecond)

	h.feed.hands <- detector.PinchLandmarks()
	require.Eventually(t, func() bool { return hasOp(h.recorder, control.OpClick) }, 2*time.Second, 5*time.Millisecond)

	resp := h.request(t, http.MethodPut, "/api/mode", `{"mode":"scroll"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool { return h.app.Status().Mode == gesture.Scroll }, 2*time.Second, 5*time.Millisecond)

	// In scroll mode the cursor stays put and fingertip travel scrolls.
	h.recorder.Reset()
	h.feed.hands <- detector.PointAt(0.5, 0.2)
	require.Eventually(t, func() bool { return hasOp(h.recorder, control.OpScroll) }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, hasOp(h.recorder, control.OpMove))

	h.stop(t)

	status := h.app.Status()
	assert.False(t, status.Running)

	resp = h.request(t, http.MethodGet, "/api/sessions/"+status.SessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session struct {
		Source  string `json:"source"`
		Entries []struct {
			Kind   string `json:"kind"`
			Origin string `json:"origin"`
		} `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, "feed", session.Source)

	var kinds []string
	for _, e := range session.Entries {
		kinds = append(kinds, e.Kind+"/"+e.Origin)
	}
	assert.Equal(t, []string{"left_click/gesture", "set_mode/http", "scroll/gesture", "quit/test"}, kinds)
}

func TestE2E_CalibrationPersists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := start(t)
	defer h.stop(t)

	resp := h.request(t, http.MethodPut, "/api/calibration", `{"click_threshold": 12}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return h.app.Status().Calibration.ClickThreshold == 12
	}, 2*time.Second, 5*time.Millisecond)

	saved, err := h.store.Settings().LoadThresholds()
	require.NoError(t, err)
	assert.Equal(t, 12.0, saved.ClickThreshold)

	// A 20px pinch is no longer close enough to click.
	hand := detector.PointAt(0.5, 0.5)
	tip := hand.Points[detector.IndexTip]
	hand.Points[detector.ThumbTip] = detector.Point3D{X: tip.X + 20.0/640, Y: tip.Y}
	h.feed.hands <- hand
	require.Eventually(t, func() bool { return hasOp(h.recorder, control.OpMove) }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, hasOp(h.recorder, control.OpClick))

	resp = h.request(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
