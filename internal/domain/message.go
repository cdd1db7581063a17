package domain

import "time"

// MaxMessageLength bounds a single message body (plaintext runes)
const MaxMessageLength = 2000

// UnreadablePlaceholder is shown in place of a message whose ciphertext
// fails authentication; one bad row never fails the whole thread read.
const UnreadablePlaceholder = "[meddelandet kan inte läsas]"

// Message is one encrypted message in a conversation. Rows are immutable:
// there is no edit or delete. Plaintext is never persisted.
type Message struct {
	ID               uint64    `gorm:"primaryKey" json:"id"`
	ConversationID   uint64    `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	SenderID         uint64    `gorm:"column:sender_id;not null" json:"sender_id"`
	EncryptedContent string    `gorm:"column:encrypted_content;type:text;not null" json:"-"`
	Nonce            string    `gorm:"column:nonce;size:24;not null" json:"-"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest is the message send payload
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// MessageResponse carries a decrypted message to a participant
type MessageResponse struct {
	ID        uint64    `json:"id"`
	SenderID  uint64    `json:"sender_id"`
	IsOwn     bool      `json:"is_own"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
