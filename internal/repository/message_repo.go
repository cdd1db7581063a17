package repository

import (
	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// MessageRepository is the message data access interface.
// Messages are append-only: no update or single-row delete exists.
type MessageRepository interface {
	Create(msg *domain.Message) error
	ListByConversation(conversationID uint64) ([]*domain.Message, error)
	DeleteByConversation(conversationID uint64) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) ListByConversation(conversationID uint64) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id ASC").Find(&messages).Error
	return messages, err
}

// DeleteByConversation removes all ciphertext rows for a thread; called by
// the purge sweep before the conversation row goes away so no orphaned
// ciphertext is left behind.
func (r *messageRepository) DeleteByConversation(conversationID uint64) error {
	return r.db.Where("conversation_id = ?", conversationID).Delete(&domain.Message{}).Error
}
