package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wire tags. Every frame is a JSON object whose "type" field selects the
// variant; decoding rejects anything outside this set.
const (
	typeJoinRoom    = "join_room"
	typeLeaveRoom   = "leave_room"
	typeMessage     = "message"
	typeTyping      = "typing"
	typeDm          = "dm"
	typePing        = "ping"
	typeUserJoined  = "user_joined"
	typeUserLeft    = "user_left"
	typeOnlineUsers = "online_users"
	typeError       = "error"
	typePong        = "pong"
)

const CodeParseError = "PARSE_ERROR"

// ClientMessage is the closed set of commands a client may send.
type ClientMessage interface {
	clientMessage()
}

type JoinRoom struct {
	RoomID uuid.UUID `json:"room_id"`
}

type LeaveRoom struct {
	RoomID uuid.UUID `json:"room_id"`
}

type ChatMessage struct {
	RoomID  uuid.UUID `json:"room_id"`
	Content string    `json:"content"`
}

type Typing struct {
	RoomID   uuid.UUID `json:"room_id"`
	IsTyping bool      `json:"is_typing"`
}

type DirectMessage struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
}

type Ping struct{}

func (JoinRoom) clientMessage()      {}
func (LeaveRoom) clientMessage()     {}
func (ChatMessage) clientMessage()   {}
func (Typing) clientMessage()        {}
func (DirectMessage) clientMessage() {}
func (Ping) clientMessage()          {}

// DecodeClientMessage parses one inbound frame. It fails closed: an unknown
// tag, a missing required field, or malformed JSON is an error, never a
// default variant.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %v", err)
	}

	switch env.Type {
	case typeJoinRoom:
		var msg JoinRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%s: %v", typeJoinRoom, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, fmt.Errorf("%s: room_id is required", typeJoinRoom)
		}
		return msg, nil
	case typeLeaveRoom:
		var msg LeaveRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%s: %v", typeLeaveRoom, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, fmt.Errorf("%s: room_id is required", typeLeaveRoom)
		}
		return msg, nil
	case typeMessage:
		var msg ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%s: %v", typeMessage, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, fmt.Errorf("%s: room_id is required", typeMessage)
		}
		return msg, nil
	case typeTyping:
		var msg Typing
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%s: %v", typeTyping, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, fmt.Errorf("%s: room_id is required", typeTyping)
		}
		return msg, nil
	case typeDm:
		var msg DirectMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%s: %v", typeDm, err)
		}
		if msg.RecipientID == uuid.Nil {
			return nil, fmt.Errorf("%s: recipient_id is required", typeDm)
		}
		return msg, nil
	case typePing:
		return Ping{}, nil
	case "":
		return nil, fmt.Errorf("missing message type")
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}

// ServerMessage is the closed set of notifications the server may emit.
// Values are built through the constructors below, which stamp the wire tag.
type ServerMessage interface {
	serverMessage()
}

type EventUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name,omitempty"`
}

type MessageEvent struct {
	Type      string    `json:"type"`
	MessageID uuid.UUID `json:"message_id"`
	RoomID    uuid.UUID `json:"room_id"`
	User      EventUser `json:"user"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type UserJoinedEvent struct {
	Type   string    `json:"type"`
	RoomID uuid.UUID `json:"room_id"`
	User   EventUser `json:"user"`
}

type UserLeftEvent struct {
	Type   string    `json:"type"`
	RoomID uuid.UUID `json:"room_id"`
	UserID uuid.UUID `json:"user_id"`
}

type TypingEvent struct {
	Type     string    `json:"type"`
	RoomID   uuid.UUID `json:"room_id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	IsTyping bool      `json:"is_typing"`
}

type DmEvent struct {
	Type      string    `json:"type"`
	From      EventUser `json:"from"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type OnlineUsersEvent struct {
	Type    string    `json:"type"`
	RoomID  uuid.UUID `json:"room_id"`
	UserIDs []string  `json:"user_ids"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PongEvent struct {
	Type string `json:"type"`
}

func (MessageEvent) serverMessage()     {}
func (UserJoinedEvent) serverMessage()  {}
func (UserLeftEvent) serverMessage()    {}
func (TypingEvent) serverMessage()      {}
func (DmEvent) serverMessage()          {}
func (OnlineUsersEvent) serverMessage() {}
func (ErrorEvent) serverMessage()       {}
func (PongEvent) serverMessage()        {}

func NewMessageEvent(messageID, roomID uuid.UUID, user EventUser, content string, timestamp time.Time) MessageEvent {
	return MessageEvent{
		Type:      typeMessage,
		MessageID: messageID,
		RoomID:    roomID,
		User:      user,
		Content:   content,
		Timestamp: timestamp,
	}
}

func NewUserJoinedEvent(roomID uuid.UUID, user EventUser) UserJoinedEvent {
	return UserJoinedEvent{Type: typeUserJoined, RoomID: roomID, User: user}
}

func NewUserLeftEvent(roomID, userID uuid.UUID) UserLeftEvent {
	return UserLeftEvent{Type: typeUserLeft, RoomID: roomID, UserID: userID}
}

func NewTypingEvent(roomID, userID uuid.UUID, username string, isTyping bool) TypingEvent {
	return TypingEvent{Type: typeTyping, RoomID: roomID, UserID: userID, Username: username, IsTyping: isTyping}
}

func NewDmEvent(from EventUser, content string, timestamp time.Time) DmEvent {
	return DmEvent{Type: typeDm, From: from, Content: content, Timestamp: timestamp}
}

func NewOnlineUsersEvent(roomID uuid.UUID, userIDs []string) OnlineUsersEvent {
	return OnlineUsersEvent{Type: typeOnlineUsers, RoomID: roomID, UserIDs: userIDs}
}

func NewErrorEvent(code, message string) ErrorEvent {
	return ErrorEvent{Type: typeError, Code: code, Message: message}
}

func NewPongEvent() PongEvent {
	return PongEvent{Type: typePong}
}

// EncodeServerMessage serializes an outbound event to one wire frame.
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode server message: %v", err)
	}
	return data, nil
}
