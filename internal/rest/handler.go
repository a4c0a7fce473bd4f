package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
)

type Handler struct {
	auth     AuthService
	rooms    RoomService
	messages MessageService
	hub      Broadcaster
}

func New(auth AuthService, rooms RoomService, messages MessageService, hub Broadcaster) *Handler {
	return &Handler{
		auth:     auth,
		rooms:    rooms,
		messages: messages,
		hub:      hub,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("Register")

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	response, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, response, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("Login")

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	response, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("Refresh")

	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, tokens, http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("Logout")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	if err := h.auth.Logout(r.Context(), identity.UserID); err != nil {
		h.writeError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("Me")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	user, err := h.auth.Me(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, user, http.StatusOK)
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CreateRoom")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	var req model.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), identity, &req)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, room, http.StatusCreated)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ListRooms")

	limit := queryInt32(r, "limit", 50)

	rooms, err := h.rooms.ListRooms(r.Context(), limit)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, model.RoomsResponse{Rooms: rooms}, http.StatusOK)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetRoom")

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid room id"))
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, room, http.StatusOK)
}

func (h *Handler) ListRoomMembers(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ListRoomMembers")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid room id"))
		return
	}

	members, err := h.rooms.ListRoomMembers(r.Context(), identity, roomID)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, model.RoomMembersResponse{Members: members}, http.StatusOK)
}

func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("JoinRoom")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid room id"))
		return
	}

	if err = h.rooms.JoinRoom(r.Context(), identity, roomID); err != nil {
		h.writeError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRoomMessages(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ListRoomMessages")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid room id"))
		return
	}

	limit := queryInt32(r, "limit", 50)
	offset := queryInt32(r, "offset", 0)

	messages, err := h.messages.ListRoomMessages(r.Context(), identity, roomID, limit, offset)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, model.MessagesResponse{Messages: *messages}, http.StatusOK)
}

// SendMessage persists through the pipeline, then fans out to the room over
// the hub. Fan-out is best-effort; the REST response reports the persisted
// message regardless.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendMessage")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid room id"))
		return
	}

	var req model.SendMessageRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	message, err := h.messages.SendRoomMessage(r.Context(), identity, roomID, req.Content)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	event, err := h.messages.BuildMessageEvent(r.Context(), message)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to build message event: %v", err))
	} else {
		h.hub.BroadcastToRoom(roomID, event, identity.UserID)
	}

	h.writeJSON(w, model.SendMessageResponse{MessageID: message.ID, SentAt: message.CreatedAt}, http.StatusCreated)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("DeleteMessage")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	messageID, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid message id"))
		return
	}

	if err = h.messages.DeleteMessage(r.Context(), identity, messageID); err != nil {
		h.writeError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendDirectMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendDirectMessage")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	recipientID, err := uuid.Parse(chi.URLParam(r, "recipientID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid recipient id"))
		return
	}

	var req model.SendMessageRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, logger, apperr.BadRequest("invalid request body"))
		return
	}

	dm, err := h.messages.SendDirectMessage(r.Context(), identity, recipientID, req.Content)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	event, err := h.messages.BuildDirectMessageEvent(r.Context(), dm)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to build direct message event: %v", err))
	} else {
		h.hub.SendToUser(recipientID, event)
	}

	h.writeJSON(w, model.SendMessageResponse{MessageID: dm.ID, SentAt: dm.CreatedAt}, http.StatusCreated)
}

func (h *Handler) DirectMessageHistory(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("DirectMessageHistory")

	identity, ok := identityFromContext(r.Context())
	if !ok {
		logger.Error("failed to get caller identity")
		h.writeError(w, logger, apperr.Internal("failed to get caller identity", nil))
		return
	}

	otherID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, logger, apperr.BadRequest("invalid user id"))
		return
	}

	dms, err := h.messages.DirectMessageHistory(r.Context(), identity, otherID)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	h.writeJSON(w, model.DirectMessagesResponse{Messages: dms}, http.StatusOK)
}

func identityFromContext(ctx context.Context) (model.Identity, bool) {
	rawID, ok := ctx.Value(config.KeyUUID).(string)
	if !ok {
		return model.Identity{}, false
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return model.Identity{}, false
	}

	username, _ := ctx.Value(config.KeyUsername).(string)

	return model.Identity{UserID: userID, Username: username}, true
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}

	return int32(value)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, logger logger_lib.LoggerInterface, err error) {
	logger.Error(err.Error())

	status, code, message := apperr.HTTP(err)
	h.writeJSON(w, model.ErrorResponse{Type: "error", Code: code, Message: message}, status)
}
