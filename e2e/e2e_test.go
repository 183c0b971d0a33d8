package e2e

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/publish"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/testdata"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type sessionJSON struct {
	ID       string `json:"id"`
	Frames   int    `json:"frames"`
	Detector string `json:"detector"`
	Mode     string `json:"mode"`
	Gestures []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"gestures"`
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer s.Close()

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	source := hand.NewSource(detector.DefaultConfig(), false, func(detector.Config) (detector.Detector, error) {
		return mock, nil
	})
	defer source.Close()

	frames := testdata.Sequence(10, func() gocv.Mat { return testdata.BlankFrame(testdata.Width, testdata.Height) })
	defer testdata.CloseAll(frames)

	cfg := app.DefaultConfig()
	cfg.Store = s
	cfg.Capture.Width, cfg.Capture.Height = testdata.Width, testdata.Height
	cfg.FPSLimit = 0
	cfg.ScreenshotDir = t.TempDir()
	session := app.NewSession(cfg, capture.NewMockCamera(frames, false), source)

	signals := server.NewSignalHub()
	stream := server.NewFrameHub()
	sinks := publish.NewMulti(signals)
	defer sinks.Close()
	session.SetSink(sinks)
	session.SetFrameSink(stream)

	srv := server.New(server.Config{
		Store:      s,
		Controller: session,
		Signals:    signals,
		Frames:     stream,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/signals"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return signals.Clients() == 1 }, time.Second, 10*time.Millisecond)

	t.Run("SwitchMode", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/mode", "application/json", strings.NewReader(`{"mode": "volume"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("RunSession", func(t *testing.T) {
		sum, err := session.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10, sum.Frames)
		assert.Equal(t, "volume", sum.Mode)
		assert.NotEmpty(t, sum.ID)
	})

	t.Run("SignalFeed", func(t *testing.T) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		var modes []string
		for {
			var msg envelope
			require.NoError(t, conn.ReadJSON(&msg))
			if msg.Type == publish.KindSummary {
				break
			}
			require.Equal(t, publish.KindSignal, msg.Type)

			var sig struct {
				Mode    string `json:"mode"`
				Gesture string `json:"gesture"`
			}
			require.NoError(t, json.Unmarshal(msg.Data, &sig))
			assert.Equal(t, gesture.OpenPalm, sig.Gesture)
			modes = append(modes, sig.Mode)
		}

		// The switch is queued and takes effect after the first frame.
		require.Len(t, modes, 10)
		assert.Equal(t, "mouse", modes[0])
		for _, m := range modes[1:] {
			assert.Equal(t, "volume", m)
		}
	})

	var id string
	t.Run("ListSessions", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list struct {
			Sessions []sessionJSON `json:"sessions"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Len(t, list.Sessions, 1)
		id = list.Sessions[0].ID
		assert.Equal(t, 10, list.Sessions[0].Frames)
		assert.Equal(t, "landmarks", list.Sessions[0].Detector)
	})

	t.Run("GetSession", func(t *testing.T) {
		require.NotEmpty(t, id)
		resp, err := client.Get(ts.URL + "/api/sessions/" + id)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got sessionJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "volume", got.Mode)
		require.Len(t, got.Gestures, 1)
		assert.Equal(t, gesture.OpenPalm, got.Gestures[0].Name)
		assert.Equal(t, 10, got.Gestures[0].Count)
	})

	t.Run("LastModeRemembered", func(t *testing.T) {
		mode, err := s.Settings().Get(store.SettingLastMode)
		require.NoError(t, err)
		assert.Equal(t, "volume", mode)
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		var health map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, "ok", health["status"])
		assert.Equal(t, "volume", health["mode"])
		assert.Equal(t, "landmarks", health["detector"])
	})
}

func TestE2E_FallbackSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer s.Close()

	source := hand.NewSource(detector.DefaultConfig(), true, nil)
	defer source.Close()

	frames := testdata.Sequence(3, func() gocv.Mat {
		return testdata.SkinFrame(image.Rect(100, 100, 300, 260))
	})
	defer testdata.CloseAll(frames)

	cfg := app.DefaultConfig()
	cfg.Store = s
	cfg.FPSLimit = 0
	cfg.ScreenshotDir = t.TempDir()
	session := app.NewSession(cfg, capture.NewMockCamera(frames, false), source)

	sum, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Frames)
	assert.Equal(t, "contour", sum.Detector)
	require.Len(t, sum.Gestures, 1)
	assert.True(t, strings.HasPrefix(sum.Gestures[0].Name, "Hand ("), sum.Gestures[0].Name)
	assert.Equal(t, 3, sum.Gestures[0].Count)

	stored, err := s.Sessions().GetByID(sum.ID)
	require.NoError(t, err)
	assert.Equal(t, "contour", stored.Detector)
}
