package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/repository/connection/inmemory"
	sessionRedis "github.com/sharetube/thumbpreview/internal/repository/session/redis"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const (
	testVideoId  = "dQw4w9WgXcQ"
	testVideoURL = "https://www.youtube.com/embed/" + testVideoId
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	previewService := preview.New(
		sessionRedis.NewRepo(rc, logger, time.Hour),
		inmemory.NewRepo(logger),
		ytthumb.HeuristicExtractor{},
		logger,
		&preview.Config{
			Secret:       "test-secret",
			SessionExp:   time.Hour,
			CopyAckDelay: 50 * time.Millisecond,
			Modal: modal.Options{
				CloseOnOverlayClick: true,
				CloseOnEscape:       true,
			},
		},
	)

	srv := httptest.NewServer(NewController(previewService, logger).GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetPreview(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/preview?input=" + url.QueryEscape(testVideoURL))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data preview.Preview `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.NotNil(t, body.Data.VideoId)
	assert.Equal(t, testVideoId, *body.Data.VideoId)
	assert.Equal(t, "https://www.youtube.com/embed/"+testVideoId, body.Data.EmbedURL)
	require.Len(t, body.Data.Thumbnails, 5)
	for i, v := range ytthumb.Variants() {
		assert.Equal(t, v, body.Data.Thumbnails[i].Variant)
		assert.Equal(t, ytthumb.ThumbnailURL(testVideoId, v), body.Data.Thumbnails[i].URL)
	}
}

func TestGetPreviewEmptyInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		wantNull bool
	}{
		{name: "missing input", query: "", wantNull: true},
		{name: "empty input", query: "?input=", wantNull: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/v1/preview" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Data preview.Preview `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			if tt.wantNull {
				assert.Nil(t, body.Data.VideoId)
			} else {
				require.NotNil(t, body.Data.VideoId)
				assert.Empty(t, *body.Data.VideoId)
			}
			assert.Empty(t, body.Data.Thumbnails)
			assert.Empty(t, body.Data.EmbedURL)
		})
	}
}

func TestGetPreviewInputTooLong(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/preview?input=" + strings.Repeat("a", 2049))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type nodeCounts struct {
	images   int
	iframes  int
	closeBtn int
	backdrop int
}

func countNodes(t *testing.T, markup string) nodeCounts {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var counts nodeCounts
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if attr(n, "data-variant") != "" {
					counts.images++
				}
			case "iframe":
				counts.iframes++
			case "a":
				if attr(n, "aria-label") == "Close modal" {
					counts.closeBtn++
				}
				if attr(n, "class") == "modal-backdrop" {
					counts.backdrop++
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return counts
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func getPage(t *testing.T, srv *httptest.Server, query string) string {
	t.Helper()

	resp, err := http.Get(srv.URL + "/?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestGetPage(t *testing.T) {
	srv := newTestServer(t)

	t.Run("empty input hides the gallery", func(t *testing.T) {
		counts := countNodes(t, getPage(t, srv, ""))
		assert.Zero(t, counts.images)
		assert.Zero(t, counts.iframes)
	})

	t.Run("video id renders five thumbnails", func(t *testing.T) {
		page := getPage(t, srv, "v="+url.QueryEscape(testVideoURL))
		counts := countNodes(t, page)
		assert.Equal(t, 5, counts.images)
		assert.Zero(t, counts.iframes, "player must not be mounted while closed")
		assert.Contains(t, page, "1280 x 720")
		assert.Contains(t, page, "120 x 90")
	})

	t.Run("play mounts the player inside the overlay", func(t *testing.T) {
		counts := countNodes(t, getPage(t, srv, "v="+testVideoId+"&play=1"))
		assert.Equal(t, 1, counts.iframes)
		assert.Equal(t, 1, counts.closeBtn)
		assert.Equal(t, 1, counts.backdrop)
	})

	t.Run("play without video keeps the overlay closed", func(t *testing.T) {
		counts := countNodes(t, getPage(t, srv, "play=1"))
		assert.Zero(t, counts.iframes)
	})
}

func TestGetPageInvalidPlay(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/?v=" + testVideoId + "&play=yes")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type testOutput struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type statePayload struct {
	State preview.State `json:"state"`
	HTML  string        `json:"html"`
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, messageType string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    messageType,
		"payload": payload,
	}))
}

func read(t *testing.T, conn *websocket.Conn) testOutput {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out testOutput
	require.NoError(t, conn.ReadJSON(&out))

	return out
}

func readState(t *testing.T, conn *websocket.Conn) statePayload {
	t.Helper()

	out := read(t, conn)
	require.Equal(t, "STATE_UPDATED", out.Type, string(out.Payload))

	var payload statePayload
	require.NoError(t, json.Unmarshal(out.Payload, &payload))

	return payload
}

func startSession(t *testing.T, srv *httptest.Server) (*websocket.Conn, sessionStartedOutput) {
	t.Helper()

	conn := dial(t, srv, "/api/v1/ws/session")

	out := read(t, conn)
	require.Equal(t, "SESSION_STARTED", out.Type)

	var started sessionStartedOutput
	require.NoError(t, json.Unmarshal(out.Payload, &started))
	require.NotEmpty(t, started.SessionToken)

	readState(t, conn)

	return conn, started
}

func TestWSSession(t *testing.T) {
	srv := newTestServer(t)
	conn, started := startSession(t, srv)

	assert.Nil(t, started.State.VideoId)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": testVideoURL})
	state := readState(t, conn)
	require.NotNil(t, state.State.VideoId)
	assert.Equal(t, testVideoId, *state.State.VideoId)
	assert.Equal(t, 5, countNodes(t, state.HTML).images)
	assert.Zero(t, countNodes(t, state.HTML).iframes)

	send(t, conn, "TOGGLE_MODAL", nil)
	state = readState(t, conn)
	assert.True(t, state.State.ModalOpen)
	assert.Equal(t, 1, countNodes(t, state.HTML).iframes)

	send(t, conn, "CLOSE_MODAL", map[string]string{"reason": "escape"})
	state = readState(t, conn)
	assert.False(t, state.State.ModalOpen)
	assert.Zero(t, countNodes(t, state.HTML).iframes)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": ""})
	state = readState(t, conn)
	require.NotNil(t, state.State.VideoId)
	assert.Empty(t, *state.State.VideoId)
	assert.Zero(t, countNodes(t, state.HTML).images)
}

func TestWSCopyEmbedURL(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := startSession(t, srv)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": testVideoId})
	readState(t, conn)

	send(t, conn, "COPY_EMBED_URL", nil)

	out := read(t, conn)
	require.Equal(t, "CLIPBOARD_WRITE", out.Type)
	var clip struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(out.Payload, &clip))
	assert.Equal(t, "https://www.youtube.com/embed/"+testVideoId, clip.Text)

	state := readState(t, conn)
	assert.True(t, state.State.Copied)

	// pushed by the server once the acknowledgement expires
	state = readState(t, conn)
	assert.False(t, state.State.Copied)
}

func TestWSFullscreen(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := startSession(t, srv)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": testVideoId})
	before := readState(t, conn)

	send(t, conn, "TOGGLE_FULLSCREEN", map[string]string{"variant": "hqdefault"})
	out := read(t, conn)
	assert.Equal(t, "REQUEST_FULLSCREEN", out.Type)
	state := readState(t, conn)
	assert.Equal(t, "hqdefault", state.State.FullscreenVariant)
	// identical markup lets the page keep the fullscreen image attached
	assert.Equal(t, before.HTML, state.HTML)

	send(t, conn, "FULLSCREEN_FAILED", map[string]string{"variant": "hqdefault", "reason": "denied"})
	state = readState(t, conn)
	assert.Empty(t, state.State.FullscreenVariant)

	send(t, conn, "TOGGLE_FULLSCREEN", map[string]string{"variant": "default"})
	assert.Equal(t, "REQUEST_FULLSCREEN", read(t, conn).Type)
	readState(t, conn)

	send(t, conn, "TOGGLE_FULLSCREEN", map[string]string{"variant": "default"})
	assert.Equal(t, "EXIT_FULLSCREEN", read(t, conn).Type)
	state = readState(t, conn)
	assert.Empty(t, state.State.FullscreenVariant)
}

func TestWSErrorsKeepConnectionOpen(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := startSession(t, srv)

	tests := []struct {
		name        string
		messageType string
		payload     any
	}{
		{name: "unknown type", messageType: "NOPE"},
		{name: "open without video", messageType: "OPEN_MODAL"},
		{name: "copy without video", messageType: "COPY_EMBED_URL"},
		{name: "unknown variant", messageType: "TOGGLE_FULLSCREEN", payload: map[string]string{"variant": "huge"}},
		{name: "bad payload", messageType: "UPDATE_INPUT", payload: "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.messageType, tt.payload)
			out := read(t, conn)
			assert.Equal(t, "ERROR", out.Type)
		})
	}

	send(t, conn, "GET_STATE", nil)
	readState(t, conn)
}

func TestWSResume(t *testing.T) {
	srv := newTestServer(t)
	conn, started := startSession(t, srv)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": testVideoId})
	readState(t, conn)
	send(t, conn, "OPEN_MODAL", nil)
	readState(t, conn)
	require.NoError(t, conn.Close())

	resumePath := "/api/v1/ws/session/resume?session-token=" + url.QueryEscape(started.SessionToken)

	var resumed sessionStartedOutput
	// the server releases the old connection asynchronously
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+resumePath, nil)
		if err != nil {
			return false
		}
		defer c.Close()

		c.SetReadDeadline(time.Now().Add(time.Second))
		var out testOutput
		if err := c.ReadJSON(&out); err != nil || out.Type != "SESSION_STARTED" {
			return false
		}

		return json.Unmarshal(out.Payload, &resumed) == nil
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, started.State.SessionId, resumed.State.SessionId)
	assert.Equal(t, testVideoId, resumed.State.Input)
	assert.True(t, resumed.State.ModalOpen)
}

func TestWSResumeInvalidToken(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "/api/v1/ws/session/resume?session-token=garbage")

	assert.Equal(t, "ERROR", read(t, conn).Type)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeInvalidToken), "got %v", err)
}

func TestWSResumeMissingToken(t *testing.T) {
	srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws/session/resume", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWSResumeWhileConnected(t *testing.T) {
	srv := newTestServer(t)
	_, started := startSession(t, srv)

	second := dial(t, srv, "/api/v1/ws/session/resume?session-token="+url.QueryEscape(started.SessionToken))
	assert.Equal(t, "ERROR", read(t, second).Type)

	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeAlreadyConnected), "got %v", err)
}

func TestWSEndSession(t *testing.T) {
	srv := newTestServer(t)
	conn, started := startSession(t, srv)

	send(t, conn, "END_SESSION", nil)
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	resumed := dial(t, srv, "/api/v1/ws/session/resume?session-token="+url.QueryEscape(started.SessionToken))
	assert.Equal(t, "ERROR", read(t, resumed).Type)
	_, _, err = resumed.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeSessionNotFound), "got %v", err)
}

func TestPageDefersSwapWhileFullscreen(t *testing.T) {
	srv := newTestServer(t)
	page := getPage(t, srv, "v="+testVideoId)

	assert.Contains(t, page, "view.contains(fs)")
	assert.NotContains(t, page, "data-fullscreen")
}

func TestWriteToReleasedConn(t *testing.T) {
	c := &controller{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	conn := &websocket.Conn{}

	c.trackConn(conn)
	c.untrackConn(conn)

	err := c.writeToConn(context.Background(), conn, &Output{Type: "STATE_UPDATED"})
	assert.ErrorIs(t, err, errConnReleased)

	_, ok := c.connLocks.Load(conn)
	assert.False(t, ok, "released conn must not get a new lock")
}

func TestWSResumeAfterReload(t *testing.T) {
	srv := newTestServer(t)
	conn, started := startSession(t, srv)

	send(t, conn, "UPDATE_INPUT", map[string]string{"input": testVideoId})
	readState(t, conn)

	resumePath := "/api/v1/ws/session/resume?session-token=" + url.QueryEscape(started.SessionToken)
	require.NoError(t, conn.Close())

	// whatever the teardown order, the token must stay usable
	for i := 0; i < 3; i++ {
		var resumed testOutput
		require.Eventually(t, func() bool {
			c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+resumePath, nil)
			if err != nil {
				return false
			}
			defer c.Close()

			c.SetReadDeadline(time.Now().Add(time.Second))
			if err := c.ReadJSON(&resumed); err != nil {
				return false
			}
			if resumed.Type == "SESSION_STARTED" {
				return true
			}

			_, _, err = c.ReadMessage()
			assert.False(t, websocket.IsCloseError(err, closeSessionNotFound), "session lost on reload")
			return false
		}, 2*time.Second, 10*time.Millisecond)
	}
}
