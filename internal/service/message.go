package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
	"github.com/s21platform/chat-server/internal/pkg/tx"
	"github.com/s21platform/chat-server/internal/pkg/validator"
	"github.com/s21platform/chat-server/internal/ws"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	dmHistoryLimit      = 100
)

// MessageService is the pipeline shared by the REST handlers and the
// WebSocket dispatcher: validate, authorize against durable membership,
// persist, and hand back the value the caller fans out. Persistence and
// fan-out stay two separate steps; a dropped fan-out is never retried.
type MessageService struct {
	repo DBRepo
}

func NewMessage(repo DBRepo) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) SendRoomMessage(ctx context.Context, sender model.Identity, roomID uuid.UUID, content string) (*model.Message, error) {
	if err := validator.ValidateMessageContent(content); err != nil {
		return nil, err
	}

	var message *model.Message
	err := tx.TxExecute(ctx, func(ctx context.Context) error {
		isMember, err := s.repo.IsRoomMember(ctx, roomID, sender.UserID)
		if err != nil {
			return apperr.Internal("failed to check room membership", err)
		}
		if !isMember {
			return apperr.Forbidden("you are not a member of this room")
		}

		message, err = s.repo.CreateMessage(ctx, roomID, sender.UserID, content)
		if err != nil {
			return apperr.Internal("failed to save message", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// BuildMessageEvent enriches a persisted message with the sender's public
// profile, producing the event the hub broadcasts.
func (s *MessageService) BuildMessageEvent(ctx context.Context, msg *model.Message) (ws.MessageEvent, error) {
	user, err := s.repo.GetUserByID(ctx, msg.SenderID)
	if err != nil {
		return ws.MessageEvent{}, apperr.Internal("failed to get message author", err)
	}
	if user == nil {
		return ws.MessageEvent{}, apperr.Internal("message author not found", nil)
	}

	eventUser := ws.EventUser{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}

	return ws.NewMessageEvent(msg.ID, msg.RoomID, eventUser, msg.Content, msg.CreatedAt), nil
}

func (s *MessageService) SendDirectMessage(ctx context.Context, sender model.Identity, recipientID uuid.UUID, content string) (*model.DirectMessage, error) {
	if err := validator.ValidateMessageContent(content); err != nil {
		return nil, err
	}

	if recipientID == sender.UserID {
		return nil, apperr.BadRequest("cannot send a direct message to yourself")
	}

	recipient, err := s.repo.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, apperr.Internal("failed to look up recipient", err)
	}
	if recipient == nil {
		return nil, apperr.NotFound("recipient not found")
	}

	dm, err := s.repo.CreateDirectMessage(ctx, sender.UserID, recipientID, content)
	if err != nil {
		return nil, apperr.Internal("failed to save direct message", err)
	}

	return dm, nil
}

func (s *MessageService) BuildDirectMessageEvent(ctx context.Context, dm *model.DirectMessage) (ws.DmEvent, error) {
	user, err := s.repo.GetUserByID(ctx, dm.SenderID)
	if err != nil {
		return ws.DmEvent{}, apperr.Internal("failed to get message author", err)
	}
	if user == nil {
		return ws.DmEvent{}, apperr.Internal("message author not found", nil)
	}

	from := ws.EventUser{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}

	return ws.NewDmEvent(from, dm.Content, dm.CreatedAt), nil
}

func (s *MessageService) IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	isMember, err := s.repo.IsRoomMember(ctx, roomID, userID)
	if err != nil {
		return false, apperr.Internal("failed to check room membership", err)
	}

	return isMember, nil
}

func (s *MessageService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to get user", err)
	}

	return user, nil
}

func (s *MessageService) ListRoomMessages(ctx context.Context, requester model.Identity, roomID uuid.UUID, limit, offset int32) (*model.MessageList, error) {
	isMember, err := s.repo.IsRoomMember(ctx, roomID, requester.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to check room membership", err)
	}
	if !isMember {
		return nil, apperr.Forbidden("you are not a member of this room")
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.ListRoomMessages(ctx, roomID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to list room messages", err)
	}

	return messages, nil
}

func (s *MessageService) DeleteMessage(ctx context.Context, requester model.Identity, messageID uuid.UUID) error {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return apperr.Internal("failed to get message", err)
	}
	if msg == nil {
		return apperr.NotFound("message not found")
	}
	if msg.SenderID != requester.UserID {
		return apperr.Forbidden("you can only delete your own messages")
	}

	if err = s.repo.DeleteMessage(ctx, messageID); err != nil {
		return apperr.Internal("failed to delete message", err)
	}

	return nil
}

// DirectMessageHistory lists the conversation between the requester and the
// other user and marks the other side's messages as read.
func (s *MessageService) DirectMessageHistory(ctx context.Context, requester model.Identity, otherID uuid.UUID) ([]model.DirectMessage, error) {
	dms, err := s.repo.ListDirectMessages(ctx, requester.UserID, otherID, dmHistoryLimit)
	if err != nil {
		return nil, apperr.Internal("failed to list direct messages", err)
	}

	if err = s.repo.MarkDirectMessagesRead(ctx, otherID, requester.UserID); err != nil {
		return nil, apperr.Internal("failed to mark direct messages read", err)
	}

	return dms, nil
}
