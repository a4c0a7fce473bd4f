package model

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type CreateRoomRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPrivate   bool    `json:"is_private"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	MessageID uuid.UUID `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type DirectMessagesResponse struct {
	Messages []DirectMessage `json:"messages"`
}

type RoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

type RoomMembersResponse struct {
	Members []RoomMember `json:"members"`
}

type ErrorResponse struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
