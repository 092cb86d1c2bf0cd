package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Canvas.Width, cfg.Canvas.Height = 120, 90
	cfg.Animation.TickMS = 2
	if mutate != nil {
		mutate(cfg)
	}
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeState(t *testing.T, resp *http.Response) boardState {
	t.Helper()
	var st boardState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func createBoard(t *testing.T, ts *httptest.Server, body string) boardState {
	t.Helper()
	resp := do(t, "POST", ts.URL+"/v1/boards", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeState(t, resp)
}

func TestCreateAndGetBoard(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, 120.0, st.Width)
	assert.Equal(t, "freeform", st.Mode.String())

	resp := do(t, "GET", ts.URL+"/v1/boards/"+st.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, st.ID, decodeState(t, resp).ID)

	resp = do(t, "GET", ts.URL+"/v1/boards", "")
	var all []boardState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 1)
}

func TestCreateWithModeAndSize(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, `{"width":300,"height":200,"dpr":2,"mode":"tictactoe"}`)
	assert.Equal(t, 300.0, st.Width)
	assert.Equal(t, 2.0, st.DPR)
	assert.Equal(t, "tictactoe", st.Mode.String())

	resp := do(t, "POST", ts.URL+"/v1/boards", `{"mode":"chess"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBoardLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) { c.Server.MaxBoards = 1 })
	createBoard(t, ts, "")
	resp := do(t, "POST", ts.URL+"/v1/boards", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownBoard(t *testing.T) {
	_, ts := newTestServer(t, nil)
	for _, path := range []string{"", "/capture", "/frame.png"} {
		resp := do(t, "GET", ts.URL+"/v1/boards/nope"+path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	resp := do(t, "DELETE", ts.URL+"/v1/boards/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplyActionAndUndo(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	base := ts.URL + "/v1/boards/" + st.ID

	resp := do(t, "POST", base+"/actions?wait=true", `{"draw_shapes":[
		{"shape":"circle","x":50,"y":50,"size":20},
		{"shape":"text","text":"Hi","x":50,"y":20}
	]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var ar actionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ar))
	assert.Equal(t, actionResponse{Strokes: 1, Texts: 1, Complete: true}, ar)

	got := decodeState(t, do(t, "GET", base, ""))
	assert.Len(t, got.Strokes, 1)
	assert.Len(t, got.Texts, 1)
	assert.Equal(t, 1, got.UndoDepth)

	got = decodeState(t, do(t, "POST", base+"/undo", ""))
	assert.Empty(t, got.Strokes)
	assert.Empty(t, got.Texts)
}

// waitForAction posts body with ?wait=true in the background and
// delivers the decoded response.
func waitForAction(base, body string) <-chan actionResponse {
	out := make(chan actionResponse, 1)
	go func() {
		defer close(out)
		resp, err := http.Post(base+"/actions?wait=true", "application/json", strings.NewReader(body))
		if err != nil {
			return
		}
		defer resp.Body.Close()
		var ar actionResponse
		if json.NewDecoder(resp.Body).Decode(&ar) == nil {
			out <- ar
		}
	}()
	return out
}

func TestWaitingActionReleasedWhenCancelled(t *testing.T) {
	const circle = `{"draw_shapes":[{"shape":"circle","x":50,"y":50,"size":40}]}`
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"undo", "POST", "/undo", ""},
		{"clear", "POST", "/clear", ""},
		{"mode", "POST", "/mode", `{"mode":"tictactoe"}`},
		{"next action", "POST", "/actions", `{"draw_shapes":[{"shape":"text","text":"Hi","x":50,"y":50}]}`},
		{"delete", "DELETE", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ts := newTestServer(t, nil)
			st := createBoard(t, ts, "")
			base := ts.URL + "/v1/boards/" + st.ID
			e, err := s.get(st.ID)
			require.NoError(t, err)

			got := waitForAction(base, circle)
			require.Eventually(t, e.wb.Busy, 2*time.Second, 5*time.Millisecond)
			do(t, tt.method, base+tt.path, tt.body)

			select {
			case ar, ok := <-got:
				require.True(t, ok, "waiting request failed")
				assert.Equal(t, actionResponse{Strokes: 1, Complete: false}, ar)
			case <-time.After(3 * time.Second):
				t.Fatal("waiting request still blocked after the reveal was cancelled")
			}
		})
	}
}

func TestCloseReleasesWaitingAction(t *testing.T) {
	s, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	e, err := s.get(st.ID)
	require.NoError(t, err)

	got := waitForAction(ts.URL+"/v1/boards/"+st.ID, `{"draw_shapes":[{"shape":"circle","x":50,"y":50,"size":40}]}`)
	require.Eventually(t, e.wb.Busy, 2*time.Second, 5*time.Millisecond)
	s.Close()

	select {
	case ar := <-got:
		assert.False(t, ar.Complete)
	case <-time.After(3 * time.Second):
		t.Fatal("Close left a waiting request blocked")
	}
}

func TestTextOnlyActionCompletesAtOnce(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	resp := do(t, "POST", ts.URL+"/v1/boards/"+st.ID+"/actions", `{"draw_shapes":[{"shape":"text","text":"Hi","x":50,"y":50}]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var ar actionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ar))
	assert.True(t, ar.Complete)
	assert.Zero(t, ar.Strokes)
}

func TestBadActionBody(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	resp := do(t, "POST", ts.URL+"/v1/boards/"+st.ID+"/actions", `{"draw_shapes":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActionRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Server.ActionsPerMinute = 1
		c.Server.Burst = 1
	})
	st := createBoard(t, ts, "")
	url := ts.URL + "/v1/boards/" + st.ID + "/actions"

	first := do(t, "POST", url, `{}`)
	assert.Equal(t, http.StatusAccepted, first.StatusCode)
	second := do(t, "POST", url, `{}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "0", second.Header.Get("X-RateLimit-Remaining"))

	other := createBoard(t, ts, "")
	resp := do(t, "POST", ts.URL+"/v1/boards/"+other.ID+"/actions", `{}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode, "limits are per board")
}

func TestModeAndClear(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	base := ts.URL + "/v1/boards/" + st.ID

	got := decodeState(t, do(t, "POST", base+"/mode", `{"mode":"tic-tac-toe"}`))
	assert.Equal(t, "tictactoe", got.Mode.String())

	resp := do(t, "POST", base+"/mode", `{"mode":"chess"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	do(t, "POST", base+"/actions?wait=true", `{"type":"mark_cell","position":4}`)
	got = decodeState(t, do(t, "POST", base+"/clear", ""))
	assert.Empty(t, got.Strokes)
	assert.Equal(t, 2, got.UndoDepth)
}

func TestCaptureAndFrame(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, `{"dpr":2}`)
	base := ts.URL + "/v1/boards/" + st.ID

	resp := do(t, "GET", base+"/capture", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "image/png", body["media_type"])
	raw, err := base64.StdEncoding.DecodeString(body["data"])
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx(), "capture is at logical size")

	resp = do(t, "GET", base+"/frame.png", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err = png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx(), "frames are at device resolution")
}

func TestDeleteBoard(t *testing.T) {
	_, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")
	resp := do(t, "DELETE", ts.URL+"/v1/boards/"+st.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, "GET", ts.URL+"/v1/boards/"+st.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketDrawing(t *testing.T) {
	s, ts := newTestServer(t, nil)
	st := createBoard(t, ts, "")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/boards/" + st.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	for _, msg := range []pointerMessage{
		{Type: "tool", Tool: "marker"},
		{Type: "color", Color: "red"},
		{Type: "down", X: 10, Y: 10},
		{Type: "move", X: 60, Y: 40},
		{Type: "up"},
	} {
		require.NoError(t, conn.WriteJSON(msg))
	}

	e, err := s.get(st.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(e.wb.Strokes()) == 1 }, 5*time.Second, 10*time.Millisecond)
	stroke := e.wb.Strokes()[0]
	assert.Equal(t, "marker", stroke.Tool.String())
	assert.Equal(t, "red", stroke.Color)
	assert.Len(t, stroke.Points, 2)
}
