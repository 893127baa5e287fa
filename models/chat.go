// models/chat.go
package models

import "time"

// ChatMessage is one message in an article chat session. Both the user's
// message and the assistant's reply are persisted by the relay.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ArticleID uint      `json:"article_id" gorm:"index"`
	SessionID string    `json:"session_id" gorm:"not null;size:64;index"`
	Role      string    `json:"role" gorm:"not null;size:20"` // user, assistant
	Content   string    `json:"content" gorm:"not null;type:text"`
	IsVoice   bool      `json:"is_voice" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
