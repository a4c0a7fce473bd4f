//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
)

type DBRepo interface {
	CreateUser(ctx context.Context, username, email, passwordHash string, displayName *string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	CreateRoom(ctx context.Context, name string, description *string, isPrivate bool, createdBy uuid.UUID) (*model.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	ListRooms(ctx context.Context, includePrivate bool, limit int32) ([]model.Room, error)
	AddRoomMember(ctx context.Context, roomID, userID uuid.UUID, role string) error
	IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	ListRoomMembers(ctx context.Context, roomID uuid.UUID) ([]model.RoomMember, error)

	CreateMessage(ctx context.Context, roomID, senderID uuid.UUID, content string) (*model.Message, error)
	GetMessage(ctx context.Context, messageID uuid.UUID) (*model.Message, error)
	ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit, offset int32) (*model.MessageList, error)
	DeleteMessage(ctx context.Context, messageID uuid.UUID) error

	CreateDirectMessage(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*model.DirectMessage, error)
	ListDirectMessages(ctx context.Context, userA, userB uuid.UUID, limit int32) ([]model.DirectMessage, error)
	MarkDirectMessagesRead(ctx context.Context, senderID, recipientID uuid.UUID) error

	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

type TokenIssuer interface {
	IssuePair(userID uuid.UUID, username string) (*model.TokenPair, error)
	Refresh(refreshToken string) (*model.TokenPair, error)
}

type SessionCache interface {
	SetSession(ctx context.Context, session model.Session) error
	DeleteSession(ctx context.Context, userID uuid.UUID) error
}
