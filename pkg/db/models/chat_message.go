package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// ChatMessage is one turn of a shopper's barista conversation.
type ChatMessage struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	Role      enums.ChatRole `gorm:"column:role;not null"`
	Content   string         `gorm:"column:content;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
