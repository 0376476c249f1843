package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity root. Every signal tenant_id and every profile id
// must reference a row here. Email is nullable for chat-only subscribers.
type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email     *string   `gorm:"type:text;uniqueIndex"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
