//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package ws

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/jwt"
)

type MessagePipeline interface {
	SendRoomMessage(ctx context.Context, sender model.Identity, roomID uuid.UUID, content string) (*model.Message, error)
	BuildMessageEvent(ctx context.Context, msg *model.Message) (MessageEvent, error)
	SendDirectMessage(ctx context.Context, sender model.Identity, recipientID uuid.UUID, content string) (*model.DirectMessage, error)
	BuildDirectMessageEvent(ctx context.Context, dm *model.DirectMessage) (DmEvent, error)
	IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type TokenVerifier interface {
	Verify(tokenString string) (*jwt.Claims, error)
}

type SessionCache interface {
	TouchSession(ctx context.Context, userID uuid.UUID) error
}

type MetricsClient interface {
	Increment(metric string)
}
