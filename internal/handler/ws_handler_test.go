package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaus0729/shoplive/internal/config"
	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/hub"
	"github.com/firdaus0729/shoplive/internal/registry"
	"github.com/firdaus0729/shoplive/internal/room"
	"github.com/firdaus0729/shoplive/internal/signal"
	"github.com/firdaus0729/shoplive/pkg/jwt"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
)

type wsFixture struct {
	server *httptest.Server
	rooms  room.Store
	jwt    *jwt.Manager
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := jwt.NewManager("test-secret", "shoplive")
	reg := registry.NewMemoryRegistry()
	rooms := room.NewMemoryStore()
	ps := pubsub.NewMemoryPubSub()

	h := hub.NewHub()
	go h.Run()

	svc := signal.NewService(h, reg, rooms, ps, nil)

	wsConfig := config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 65536,
	}

	engine := gin.New()
	NewWSHandler(h, svc, manager, reg, wsConfig).RegisterRoutes(engine)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return &wsFixture{server: server, rooms: rooms, jwt: manager}
}

func (f *wsFixture) dial(t *testing.T, userID, username string) *websocket.Conn {
	t.Helper()
	token, err := f.jwt.Sign(userID, username, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == msgType {
			return msg
		}
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=garbage"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketPingPong(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "viewer1", "Vic")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": domain.MsgTypePing}))
	readUntil(t, conn, domain.MsgTypePong)
}

func TestJoinNotifiesBroadcasterOverWebSocket(t *testing.T) {
	f := newWSFixture(t)
	require.NoError(t, f.rooms.Create(context.Background(), "s1", "broadcaster"))

	b := f.dial(t, "broadcaster", "Bea")
	require.NoError(t, b.WriteJSON(domain.JoinMessage{Type: domain.MsgTypeJoin, StreamID: "s1"}))

	v := f.dial(t, "viewer1", "Vic")
	require.NoError(t, v.WriteJSON(domain.JoinMessage{Type: domain.MsgTypeJoin, StreamID: "s1"}))

	msg := readUntil(t, b, domain.MsgTypeViewerJoined)
	assert.Equal(t, "s1", msg["streamId"])
	assert.Equal(t, "viewer1", msg["viewerId"])
	assert.EqualValues(t, 1, msg["viewerCount"])
}

func TestReconnectDisplacesOldSocket(t *testing.T) {
	f := newWSFixture(t)

	old := f.dial(t, "viewer1", "Vic")
	fresh := f.dial(t, "viewer1", "Vic")

	// The old socket gets closed by the server.
	require.NoError(t, old.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := old.ReadMessage()
	assert.Error(t, err)

	// The new socket still works.
	require.NoError(t, fresh.WriteJSON(map[string]string{"type": domain.MsgTypePing}))
	readUntil(t, fresh, domain.MsgTypePong)
}

func TestUnknownMessageTypeReturnsError(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "viewer1", "Vic")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))

	msg := readUntil(t, conn, domain.MsgTypeError)
	assert.Equal(t, domain.ErrCodeBadRequest, msg["code"])
}
