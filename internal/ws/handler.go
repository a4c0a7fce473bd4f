package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
	"github.com/s21platform/chat-server/internal/pkg/jwt"
)

const errCodeRoomAccessDenied = "ROOM_ACCESS_DENIED"

// Handler owns the upgrade endpoint: admission, hub registration, and the
// dispatch of decoded client messages into the message pipeline.
type Handler struct {
	hub      *Hub
	pipeline MessagePipeline
	verifier TokenVerifier
	sessions SessionCache

	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, pipeline MessagePipeline, verifier TokenVerifier, sessions SessionCache) *Handler {
	return &Handler{
		hub:      hub,
		pipeline: pipeline,
		verifier: verifier,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// admit runs the session gate: extract the token, verify it, and require an
// access credential. Any failure rejects the request before the upgrade.
func (h *Handler) admit(r *http.Request) (model.Identity, error) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return model.Identity{}, apperr.Unauthorized("missing access token")
		}
		raw = strings.TrimPrefix(header, "Bearer ")
	}

	claims, err := h.verifier.Verify(raw)
	if err != nil {
		return model.Identity{}, err
	}

	if claims.TokenType != string(jwt.KindAccess) {
		return model.Identity{}, apperr.Unauthorized("not a valid access token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return model.Identity{}, err
	}

	return model.Identity{UserID: userID, Username: claims.Username}, nil
}

// ServeWS upgrades the request to a WebSocket and runs the connection pump
// until the client goes away. The handler returns only when the connection is
// fully torn down.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ServeWS")

	identity, err := h.admit(r)
	if err != nil {
		logger.Error(fmt.Sprintf("websocket admission rejected: %v", err))
		status, code, message := apperr.HTTP(err)
		http.Error(w, fmt.Sprintf("%s: %s", code, message), status)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to upgrade connection: %v", err))
		return
	}

	conn := h.hub.Register(identity.UserID, identity.Username)

	if err = h.sessions.TouchSession(r.Context(), identity.UserID); err != nil {
		logger.Error(fmt.Sprintf("failed to touch session: %v", err))
	}

	ctx := r.Context()
	RunConnection(socket, conn,
		func(msg ClientMessage) {
			h.dispatch(ctx, identity, msg)
		},
		func() {
			h.hub.Unregister(conn)
			if err := h.sessions.TouchSession(ctx, identity.UserID); err != nil {
				logger.Error(fmt.Sprintf("failed to touch session: %v", err))
			}
		},
	)
}

func (h *Handler) dispatch(ctx context.Context, identity model.Identity, msg ClientMessage) {
	switch m := msg.(type) {
	case JoinRoom:
		isMember, err := h.pipeline.IsRoomMember(ctx, m.RoomID, identity.UserID)
		if err != nil {
			h.sendError(identity, err)
			return
		}
		if !isMember {
			h.hub.SendToUser(identity.UserID, NewErrorEvent(errCodeRoomAccessDenied, "you are not a member of this room"))
			return
		}
		h.hub.JoinRoom(m.RoomID, identity.UserID, identity.Username, h.displayName(ctx, identity))

	case LeaveRoom:
		h.hub.LeaveRoom(m.RoomID, identity.UserID)

	case ChatMessage:
		saved, err := h.pipeline.SendRoomMessage(ctx, identity, m.RoomID, m.Content)
		if err != nil {
			h.sendError(identity, err)
			return
		}
		event, err := h.pipeline.BuildMessageEvent(ctx, saved)
		if err != nil {
			h.sendError(identity, err)
			return
		}
		h.hub.BroadcastToRoom(m.RoomID, event, identity.UserID)

	case Typing:
		h.hub.BroadcastToRoom(m.RoomID, NewTypingEvent(m.RoomID, identity.UserID, identity.Username, m.IsTyping), identity.UserID)

	case DirectMessage:
		dm, err := h.pipeline.SendDirectMessage(ctx, identity, m.RecipientID, m.Content)
		if err != nil {
			h.sendError(identity, err)
			return
		}
		event, err := h.pipeline.BuildDirectMessageEvent(ctx, dm)
		if err != nil {
			h.sendError(identity, err)
			return
		}
		h.hub.SendToUser(m.RecipientID, event)

	case Ping:
		h.hub.SendToUser(identity.UserID, NewPongEvent())
	}
}

func (h *Handler) displayName(ctx context.Context, identity model.Identity) *string {
	user, err := h.pipeline.GetUser(ctx, identity.UserID)
	if err != nil || user == nil {
		return nil
	}
	return user.DisplayName
}

// sendError reports a pipeline failure in-band on the caller's own
// connection. It never closes the connection.
func (h *Handler) sendError(identity model.Identity, err error) {
	_, code, message := apperr.HTTP(err)
	h.hub.SendToUser(identity.UserID, NewErrorEvent(code, message))
}
