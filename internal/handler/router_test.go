package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geochat/internal/app/chat"
	"geochat/internal/app/message"
	"geochat/internal/app/moderation"
	"geochat/internal/app/presence"
	"geochat/internal/app/session"
	"geochat/internal/configs"
	"geochat/internal/pkg/errs"
	"geochat/internal/pkg/metrics"
	"geochat/internal/pkg/resp"
)

type wsFrame struct {
	Event   string            `json:"event"`
	Payload json.RawMessage   `json:"payload"`
	Ack     *uint64           `json:"ack"`
	Error   *errs.CustomError `json:"error"`
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:  "development",
		Port:         3000,
		MessageRate:  100,
		MessageBurst: 100,
		ConnectRate:  100,
		ConnectBurst: 100,
	}
}

type testServer struct {
	*httptest.Server
	deps *AppDeps
}

func newTestServer(t *testing.T, cfg *configs.AppConfig) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	recorder := metrics.NewRecorder()
	hub := chat.NewHub(recorder)
	deps := &AppDeps{
		Hub:         hub,
		Coordinator: session.NewCoordinator(presence.NewRegistry(), hub, moderation.DefaultPolicy(), session.WithMetrics(recorder)),
		Config:      cfg,
		Metrics:     recorder,
	}

	srv := httptest.NewServer(Router(ctx, deps))
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
		cancel()
	})

	return &testServer{Server: srv, deps: deps}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Origin", "http://chat.example")

	conn, res, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws", header)
	require.NoError(t, err)
	_ = res.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *testServer) getJSON(t *testing.T, path string, dst any) int {
	t.Helper()

	res, err := http.Get(s.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dst), string(body))
	return res.StatusCode
}

func send(t *testing.T, conn *websocket.Conn, event string, payload any, ack uint64) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"event":   event,
		"payload": payload,
		"ack":     ack,
	}))
}

func expect(t *testing.T, conn *websocket.Conn, n int) []wsFrame {
	t.Helper()

	frames := make([]wsFrame, 0, n)
	for len(frames) < n {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		var f wsFrame
		require.NoError(t, conn.ReadJSON(&f), "after %d of %d frames", len(frames), n)
		frames = append(frames, f)
	}
	return frames
}

func requireText(t *testing.T, f wsFrame, username, text string) {
	t.Helper()
	require.Equal(t, session.EventMessage, f.Event)
	var msg message.Message
	require.NoError(t, json.Unmarshal(f.Payload, &msg))
	assert.Equal(t, username, msg.Username)
	assert.Equal(t, text, msg.Text)
}

func requireRoster(t *testing.T, f wsFrame, room string, names ...string) {
	t.Helper()
	require.Equal(t, session.EventRoomData, f.Event)
	var data message.RoomData
	require.NoError(t, json.Unmarshal(f.Payload, &data))
	assert.Equal(t, room, data.Room)

	got := make([]string, len(data.Users))
	for i, m := range data.Users {
		got[i] = m.Username
	}
	assert.Equal(t, names, got)
}

func requireAck(t *testing.T, f wsFrame, n uint64, code int) {
	t.Helper()
	require.Equal(t, chat.EventAck, f.Event)
	require.NotNil(t, f.Ack)
	assert.Equal(t, n, *f.Ack)
	if code == 0 {
		assert.Nil(t, f.Error)
		return
	}
	require.NotNil(t, f.Error)
	assert.Equal(t, code, f.Error.Code)
}

func join(username, room string, lat, lon float64) map[string]any {
	return map[string]any{"username": username, "room": room, "latitude": lat, "longitude": lon}
}

func TestWebSocketChatScenario(t *testing.T) {
	srv := newTestServer(t, testConfig())

	a := srv.dial(t)
	send(t, a, chat.EventJoin, join("A", "general", 59, 18), 1)
	frames := expect(t, a, 3)
	requireText(t, frames[0], message.AdminName, "Welcome!")
	requireRoster(t, frames[1], "general", "A")
	requireAck(t, frames[2], 1, 0)

	b := srv.dial(t)
	send(t, b, chat.EventJoin, join("A", "general", 59, 18), 1)
	frames = expect(t, b, 1)
	requireAck(t, frames[0], 1, errs.ErrDuplicateUsername)
	assert.Equal(t, "Username is in use!", frames[0].Error.Message)

	send(t, b, chat.EventJoin, join("b", "general", 59, 18), 2)
	frames = expect(t, b, 3)
	requireText(t, frames[0], message.AdminName, "Welcome!")
	requireRoster(t, frames[1], "general", "A", "b")
	requireAck(t, frames[2], 2, 0)

	frames = expect(t, a, 2)
	requireText(t, frames[0], message.AdminName, "b has joined!")
	requireRoster(t, frames[1], "general", "A", "b")

	send(t, a, chat.EventSendMessage, "hello HSBC", 2)
	frames = expect(t, a, 2)
	requireText(t, frames[0], "A", "hello ****")
	requireAck(t, frames[1], 2, 0)

	frames = expect(t, b, 1)
	requireText(t, frames[0], "A", "hello ****")

	require.NoError(t, b.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = b.Close()

	frames = expect(t, a, 2)
	requireText(t, frames[0], message.AdminName, "b has left!")
	requireRoster(t, frames[1], "general", "A")
}

func TestWebSocketRejections(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := srv.dial(t)

	send(t, conn, chat.EventSendMessage, "hello", 1)
	requireAck(t, expect(t, conn, 1)[0], 1, errs.ErrNotJoined)

	send(t, conn, chat.EventJoin, join("alice", "general", 40.7, -74), 2)
	frames := expect(t, conn, 1)
	requireAck(t, frames[0], 2, errs.ErrOutOfRegion)
	assert.Equal(t, "Sorry, this app is only available in Sweden.", frames[0].Error.Message)

	send(t, conn, chat.EventJoin, map[string]any{"username": "alice", "room": "general", "color": "red"}, 3)
	requireAck(t, expect(t, conn, 1)[0], 3, errs.ErrInvalidJSONFormat)

	send(t, conn, chat.EventJoin, nil, 4)
	requireAck(t, expect(t, conn, 1)[0], 4, errs.ErrInvalidParams)

	send(t, conn, "bogus", nil, 5)
	frames = expect(t, conn, 1)
	requireAck(t, frames[0], 5, errs.ErrUnknownEvent)
	assert.Equal(t, `Unsupported event "bogus".`, frames[0].Error.Message)

	send(t, conn, chat.EventJoin, join("alice", "general", 59, 18), 6)
	frames = expect(t, conn, 3)
	requireAck(t, frames[2], 6, 0)

	send(t, conn, chat.EventSendMessage, "what the fuck", 7)
	frames = expect(t, conn, 1)
	requireAck(t, frames[0], 7, errs.ErrProfanityRejected)
	assert.Equal(t, "Profanity is not allowed!", frames[0].Error.Message)

	send(t, conn, chat.EventJoin, join("alice", "random", 59, 18), 8)
	requireAck(t, expect(t, conn, 1)[0], 8, errs.ErrAlreadyJoined)
}

func TestWebSocketLocationAndLeave(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := srv.dial(t)

	send(t, conn, chat.EventJoin, join("alice", "general", 59, 18), 1)
	expect(t, conn, 3)

	send(t, conn, chat.EventSendLocation, map[string]any{"latitude": 51.5, "longitude": -0.12}, 2)
	frames := expect(t, conn, 2)
	require.Equal(t, session.EventLocationMessage, frames[0].Event)
	var loc message.LocationMessage
	require.NoError(t, json.Unmarshal(frames[0].Payload, &loc))
	assert.Equal(t, "alice", loc.Username)
	assert.Equal(t, "https://www.google.com/maps?q=51.5,-0.12", loc.URL)
	requireAck(t, frames[1], 2, 0)

	send(t, conn, chat.EventLeave, nil, 3)
	requireAck(t, expect(t, conn, 1)[0], 3, 0)

	send(t, conn, chat.EventSendMessage, "anyone?", 4)
	requireAck(t, expect(t, conn, 1)[0], 4, errs.ErrNotJoined)

	send(t, conn, chat.EventLeave, nil, 5)
	requireAck(t, expect(t, conn, 1)[0], 5, errs.ErrNotJoined)

	send(t, conn, chat.EventJoin, join("alice", "random", 59, 18), 6)
	frames = expect(t, conn, 3)
	requireText(t, frames[0], message.AdminName, "Welcome!")
	requireRoster(t, frames[1], "random", "alice")
	requireAck(t, frames[2], 6, 0)
}

func TestWebSocketEventsWithoutAck(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := srv.dial(t)

	// no ack number means no ack frame, even on failure
	require.NoError(t, conn.WriteJSON(map[string]any{"event": chat.EventSendMessage, "payload": "hi"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"event": chat.EventJoin, "payload": join("alice", "general", 59, 18)}))

	frames := expect(t, conn, 2)
	requireText(t, frames[0], message.AdminName, "Welcome!")
	requireRoster(t, frames[1], "general", "alice")
}

func TestWebSocketMessageRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1

	srv := newTestServer(t, cfg)
	conn := srv.dial(t)

	send(t, conn, chat.EventSendMessage, "one", 1)
	requireAck(t, expect(t, conn, 1)[0], 1, errs.ErrNotJoined)

	send(t, conn, chat.EventSendMessage, "two", 2)
	requireAck(t, expect(t, conn, 1)[0], 2, errs.ErrRateLimitExceeded)
}

func TestConnectRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectRate = 0.001
	cfg.ConnectBurst = 1

	srv := newTestServer(t, cfg)
	srv.dial(t)

	_, res, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, res)
	defer res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}

func TestOriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	cfg.AllowedOrigins = []string{"http://allowed.example"}

	srv := newTestServer(t, cfg)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, res, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, res)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	header.Set("Origin", "http://allowed.example")
	conn, res, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = res.Body.Close()
	_ = conn.Close()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())

	var body resp.JSONResponse
	status := srv.getJSON(t, "/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Code)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, ServiceName, data["service"])
	assert.EqualValues(t, 0, data["users"])
}

func TestRoomEndpoints(t *testing.T) {
	srv := newTestServer(t, testConfig())

	conn := srv.dial(t)
	send(t, conn, chat.EventJoin, join("alice", "General", 59, 18), 1)
	expect(t, conn, 3)

	other := srv.dial(t)
	send(t, other, chat.EventJoin, join("bob", "general", 59, 18), 1)
	expect(t, other, 3)

	var rooms struct {
		Code int `json:"code"`
		Data struct {
			Rooms []RoomSummary `json:"rooms"`
		} `json:"data"`
	}
	assert.Equal(t, http.StatusOK, srv.getJSON(t, "/api/rooms", &rooms))
	assert.Equal(t, []RoomSummary{{Room: "General", Users: 2}}, rooms.Data.Rooms)

	var roster struct {
		Code int              `json:"code"`
		Data message.RoomData `json:"data"`
	}
	assert.Equal(t, http.StatusOK, srv.getJSON(t, "/api/rooms/GENERAL/users", &roster))
	assert.Equal(t, "General", roster.Data.Room)
	assert.Equal(t, []message.Member{{Username: "alice"}, {Username: "bob"}}, roster.Data.Users)

	var empty struct {
		Data message.RoomData `json:"data"`
	}
	srv.getJSON(t, "/api/rooms/nowhere/users", &empty)
	assert.Empty(t, empty.Data.Users)

	var blank resp.JSONResponse
	srv.getJSON(t, "/api/rooms/%20/users", &blank)
	assert.Equal(t, errs.ErrMissingFields, blank.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	conn := srv.dial(t)
	send(t, conn, chat.EventJoin, join("alice", "general", 59, 18), 1)
	expect(t, conn, 3)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "geochat_joins_total 1")
	assert.Contains(t, string(body), "geochat_connections_active 1")
}

func TestRoomUsersWithEscapedNames(t *testing.T) {
	srv := newTestServer(t, testConfig())

	for i, room := range []string{"100%", "a/b", "fika & kaffe"} {
		conn := srv.dial(t)
		send(t, conn, chat.EventJoin, join("alice", room, 59, 18), uint64(i+1))
		frames := expect(t, conn, 3)
		requireAck(t, frames[2], uint64(i+1), 0)
	}

	tests := []struct {
		path string
		room string
	}{
		{"/api/rooms/100%25/users", "100%"},
		{"/api/rooms/a%2Fb/users", "a/b"},
		{"/api/rooms/fika%20&%20kaffe/users", "fika & kaffe"},
	}

	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			var roster struct {
				Code int              `json:"code"`
				Data message.RoomData `json:"data"`
			}
			assert.Equal(t, http.StatusOK, srv.getJSON(t, tt.path, &roster))
			assert.Equal(t, 0, roster.Code)
			assert.Equal(t, tt.room, roster.Data.Room)
			assert.Equal(t, []message.Member{{Username: "alice"}}, roster.Data.Users)
		})
	}
}
