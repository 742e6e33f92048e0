package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a chat-style note in a hazard's thread. is_read is the only
// mutable field; everything else is append-only.
type Message struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	HazardID  string    `json:"hazard_id" gorm:"type:varchar(36);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	SenderID  string    `json:"sender_id" gorm:"type:varchar(36);not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	Hazard *Hazard `json:"-" gorm:"foreignKey:HazardID;references:HazardID;constraint:OnDelete:CASCADE"`
}

// MessageSender is the slim sender annotation attached to thread messages
type MessageSender struct {
	Username string `json:"username"`
}

// ThreadMessage is a message annotated with its sender's username
type ThreadMessage struct {
	Message
	Sender MessageSender `json:"sender"`
}

// InboxMessage is a message annotated with its parent hazard's title,
// used by the reporter-facing inbox view and its unread count.
type InboxMessage struct {
	Message
	HazardTitle string `json:"hazard_title"`
}

func (Message) TableName() string {
	return "messages"
}

// BeforeCreate is a GORM hook that runs before creating a message
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
