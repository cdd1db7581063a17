package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// ConversationRepository is the conversation data access interface
type ConversationRepository interface {
	Create(conv *domain.Conversation) error
	FindByID(id uint64) (*domain.Conversation, error)
	FindByAdAndBuyer(adID, buyerID uint64) (*domain.Conversation, error)
	ListByParticipant(userID uint64, page, limit int) ([]*domain.Conversation, int64, error)
	FindByAd(adID uint64) ([]*domain.Conversation, error)
	Touch(id uint64) error
	Delete(id uint64) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *domain.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *conversationRepository) FindByID(id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByAdAndBuyer(adID, buyerID uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("ad_id = ? AND buyer_id = ?", adID, buyerID).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListByParticipant(userID uint64, page, limit int) ([]*domain.Conversation, int64, error) {
	var convs []*domain.Conversation
	var total int64

	query := r.db.Model(&domain.Conversation{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("updated_at DESC").
		Offset(offset).Limit(limit).Find(&convs).Error; err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

func (r *conversationRepository) FindByAd(adID uint64) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.Where("ad_id = ?", adID).Find(&convs).Error
	return convs, err
}

// Touch bumps updated_at so the thread sorts to the top of the inbox
func (r *conversationRepository) Touch(id uint64) error {
	return r.db.Model(&domain.Conversation{}).Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *conversationRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.Conversation{}, id).Error
}
