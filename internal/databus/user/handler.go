package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/chat-server/internal/config"
)

type Handler struct {
	repo DBRepo
}

func New(repo DBRepo) *Handler {
	return &Handler{repo: repo}
}

type profileUpdatedMessage struct {
	UUID       string  `json:"uuid"`
	Nickname   string  `json:"nickname"`
	AvatarLink *string `json:"avatar_link"`
}

// Handler applies profile updates published by the user service.
// Malformed messages are logged and dropped so the consumer keeps advancing.
func (h *Handler) Handler(ctx context.Context, in []byte) error {
	logger := logger_lib.FromContext(ctx, config.KeyLogger)
	logger.AddFuncName("Handler")

	var msg profileUpdatedMessage
	if err := json.Unmarshal(in, &msg); err != nil {
		logger.Error(fmt.Sprintf("failed to unmarshal message: %v", err))
		return nil
	}

	userID, err := uuid.Parse(msg.UUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to parse user uuid: %v", err))
		return nil
	}

	displayName := &msg.Nickname
	if msg.Nickname == "" {
		displayName = nil
	}

	if err = h.repo.UpdateUserProfile(ctx, userID, displayName, msg.AvatarLink); err != nil {
		logger.Error(fmt.Sprintf("failed to update user profile: %v", err))
		return err
	}
	return nil
}
