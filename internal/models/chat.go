package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage is the durable record behind a chat:message gateway event.
// Clients render from the broadcast echo of this row, not local state.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Room      string         `gorm:"size:128;not null;index" json:"room"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Kind      string         `gorm:"size:20;not null" json:"kind"` // TEXT | IMAGE | BARK
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
