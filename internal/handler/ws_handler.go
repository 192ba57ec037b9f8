package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/firdaus0729/shoplive/internal/config"
	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/hub"
	"github.com/firdaus0729/shoplive/internal/registry"
	"github.com/firdaus0729/shoplive/internal/signal"
	"github.com/firdaus0729/shoplive/pkg/jwt"
	pkglog "github.com/firdaus0729/shoplive/pkg/log"
	"github.com/firdaus0729/shoplive/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub      *hub.Hub
	signal   signal.Service
	verifier jwt.Verifier
	registry registry.Registry
	wsConfig config.WebSocketConfig
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(
	h *hub.Hub,
	svc signal.Service,
	verifier jwt.Verifier,
	reg registry.Registry,
	wsConfig config.WebSocketConfig,
) *WSHandler {
	return &WSHandler{
		hub:      h,
		signal:   svc,
		verifier: verifier,
		registry: reg,
		wsConfig: wsConfig,
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket authenticates the request, upgrades it, and wires the
// connection into the hub and registry. Authentication happens before the
// upgrade: a bad token is rejected with 401 and no socket is opened.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := pkglog.Ctx(c.Request.Context())

	token := extractToken(c)
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		l.Warn().Err(err).Msg("websocket auth failed")
		response.Unauthorized(c, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx := context.Background()
	connID := uuid.New().String()

	// Last connect wins: displace any previous socket for this user.
	if prev, err := h.registry.Resolve(ctx, identity.UserID); err == nil && prev != "" {
		h.hub.Kick(prev)
	}

	client := &hub.Client{
		ID:      connID,
		Hub:     h.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Session: domain.NewSession(connID, identity.UserID, identity.Username),
		Config:  h.wsConfig,
	}

	client.SetDisconnectHandler(func(c *hub.Client) {
		if err := h.signal.HandleDisconnect(context.Background(), c); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, c.ID).Msg("disconnect handler error")
		}
	})

	if err := h.registry.Register(ctx, identity.UserID, connID); err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, identity.UserID).Msg("failed to register connection")
		conn.Close()
		return
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

// extractToken reads the token from the query string or the Authorization
// header. Browsers cannot set headers on WebSocket requests, so the query
// parameter is the common path.
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := pkglog.L()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeJoin:
		var msg domain.JoinMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join message"))
			return
		}
		if err := h.signal.HandleJoin(ctx, client, msg.StreamID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("join failed")
		}

	case domain.MsgTypeLeave:
		var msg domain.LeaveMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid leave message"))
			return
		}
		if err := h.signal.HandleLeave(ctx, client, msg.StreamID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("leave failed")
		}

	case domain.MsgTypeOffer:
		var msg domain.OfferMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid offer message"))
			return
		}
		if err := h.signal.HandleOffer(ctx, client, msg.StreamID, msg.ViewerID, msg.Payload); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("offer failed")
		}

	case domain.MsgTypeAnswer:
		var msg domain.AnswerMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid answer message"))
			return
		}
		if err := h.signal.HandleAnswer(ctx, client, msg.StreamID, msg.Payload); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("answer failed")
		}

	case domain.MsgTypeICECandidate:
		var msg domain.ICECandidateMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid ice-candidate message"))
			return
		}
		if err := h.signal.HandleICECandidate(ctx, client, msg.StreamID, msg.TargetUserID, msg.Payload); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("ice candidate failed")
		}

	case domain.MsgTypeComment:
		var msg domain.CommentMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid comment message"))
			return
		}
		if err := h.signal.HandleComment(ctx, client, msg.StreamID, msg.Text); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("comment failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}
