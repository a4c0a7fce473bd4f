package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomRoleAdmin  = "admin"
	RoomRoleMember = "member"
)

type Room struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsPrivate   bool      `db:"is_private" json:"is_private"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type RoomMember struct {
	RoomID   uuid.UUID `db:"room_id" json:"room_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
