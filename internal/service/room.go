package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
	"github.com/s21platform/chat-server/internal/pkg/tx"
	"github.com/s21platform/chat-server/internal/pkg/validator"
)

type RoomService struct {
	repo DBRepo
}

func NewRoom(repo DBRepo) *RoomService {
	return &RoomService{repo: repo}
}

// CreateRoom creates the room and adds the creator as its admin in one
// transaction.
func (s *RoomService) CreateRoom(ctx context.Context, creator model.Identity, req *model.CreateRoomRequest) (*model.Room, error) {
	if err := validator.ValidateRoomName(req.Name); err != nil {
		return nil, err
	}

	var room *model.Room
	err := tx.TxExecute(ctx, func(ctx context.Context) error {
		var err error
		room, err = s.repo.CreateRoom(ctx, req.Name, req.Description, req.IsPrivate, creator.UserID)
		if err != nil {
			return apperr.Internal("failed to create room", err)
		}

		if err = s.repo.AddRoomMember(ctx, room.ID, creator.UserID, model.RoomRoleAdmin); err != nil {
			return apperr.Internal("failed to add room creator", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, apperr.Internal("failed to get room", err)
	}
	if room == nil {
		return nil, apperr.NotFound("room not found")
	}

	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context, limit int32) ([]model.Room, error) {
	rooms, err := s.repo.ListRooms(ctx, false, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list rooms", err)
	}

	return rooms, nil
}

// ListRoomMembers returns the room's durable membership roster. Only members
// may see it.
func (s *RoomService) ListRoomMembers(ctx context.Context, identity model.Identity, roomID uuid.UUID) ([]model.RoomMember, error) {
	isMember, err := s.repo.IsRoomMember(ctx, roomID, identity.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to check room membership", err)
	}
	if !isMember {
		return nil, apperr.Forbidden("you are not a member of this room")
	}

	members, err := s.repo.ListRoomMembers(ctx, roomID)
	if err != nil {
		return nil, apperr.Internal("failed to list room members", err)
	}

	return members, nil
}

// JoinRoom records durable membership. Private rooms cannot be self-joined.
func (s *RoomService) JoinRoom(ctx context.Context, identity model.Identity, roomID uuid.UUID) error {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return apperr.Internal("failed to get room", err)
	}
	if room == nil {
		return apperr.NotFound("room not found")
	}
	if room.IsPrivate && room.CreatedBy != identity.UserID {
		return apperr.Forbidden("room is private")
	}

	if err = s.repo.AddRoomMember(ctx, roomID, identity.UserID, model.RoomRoleMember); err != nil {
		return apperr.Internal("failed to join room", err)
	}

	return nil
}
