package validator

import (
	"fmt"
	"strings"

	"github.com/s21platform/chat-server/internal/model"
	"github.com/s21platform/chat-server/internal/pkg/apperr"
)

const maxMessageLength = 10000

func ValidateRegister(req *model.RegisterRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return apperr.BadRequest("username must be 3-50 characters")
	}

	if len(req.Password) < 8 {
		return apperr.BadRequest("password must be at least 8 characters")
	}

	if !strings.Contains(req.Email, "@") {
		return apperr.BadRequest("invalid email address")
	}

	return nil
}

func ValidateLogin(req *model.LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperr.BadRequest("email and password are required")
	}

	return nil
}

func ValidateRoomName(name string) error {
	if name == "" || len(name) > 100 {
		return apperr.BadRequest("room name must be 1-100 characters")
	}

	return nil
}

// ValidateMessageContent enforces the content rules shared by room messages
// and direct messages. The limit counts runes, not bytes.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.BadRequest("message content cannot be empty")
	}

	if len([]rune(content)) > maxMessageLength {
		return apperr.BadRequest(fmt.Sprintf("message content exceeds maximum length of %d characters", maxMessageLength))
	}

	return nil
}
