//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/ws"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
}

type RoomService interface {
	CreateRoom(ctx context.Context, creator model.Identity, req *model.CreateRoomRequest) (*model.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	ListRooms(ctx context.Context, limit int32) ([]model.Room, error)
	ListRoomMembers(ctx context.Context, identity model.Identity, roomID uuid.UUID) ([]model.RoomMember, error)
	JoinRoom(ctx context.Context, identity model.Identity, roomID uuid.UUID) error
}

type MessageService interface {
	SendRoomMessage(ctx context.Context, sender model.Identity, roomID uuid.UUID, content string) (*model.Message, error)
	BuildMessageEvent(ctx context.Context, msg *model.Message) (ws.MessageEvent, error)
	SendDirectMessage(ctx context.Context, sender model.Identity, recipientID uuid.UUID, content string) (*model.DirectMessage, error)
	BuildDirectMessageEvent(ctx context.Context, dm *model.DirectMessage) (ws.DmEvent, error)
	ListRoomMessages(ctx context.Context, requester model.Identity, roomID uuid.UUID, limit, offset int32) (*model.MessageList, error)
	DeleteMessage(ctx context.Context, requester model.Identity, messageID uuid.UUID) error
	DirectMessageHistory(ctx context.Context, requester model.Identity, otherID uuid.UUID) ([]model.DirectMessage, error)
}

type Broadcaster interface {
	BroadcastToRoom(roomID uuid.UUID, msg ws.ServerMessage, skipUser uuid.UUID)
	SendToUser(userID uuid.UUID, msg ws.ServerMessage)
}
