package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/pkg/crypto"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
	"github.com/annonstorg/annonstorg-backend/pkg/wordfilter"
)

// ConversationService implements the buyer↔seller messaging lifecycle
type ConversationService interface {
	StartConversation(adID, buyerID uint64) (*domain.ConversationResponse, error)
	ListConversations(userID uint64, page, limit int) ([]*domain.ConversationResponse, *common.Meta, error)
	ListMessages(conversationID, userID uint64) ([]*domain.MessageResponse, error)
	SendMessage(conversationID, userID uint64, content string) (*domain.MessageResponse, error)
}

type conversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	adRepo   repository.AdRepository
	filter   *wordfilter.Filter
	secret   string
	convTTL  time.Duration
}

// NewConversationService creates the conversation service. secret is the
// server-wide key-derivation secret (validated non-empty at startup).
func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	adRepo repository.AdRepository,
	filter *wordfilter.Filter,
	secret string,
	convTTLDays int,
) ConversationService {
	return &conversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		adRepo:   adRepo,
		filter:   filter,
		secret:   secret,
		convTTL:  time.Duration(convTTLDays) * 24 * time.Hour,
	}
}

// StartConversation opens the thread for (ad, buyer), or returns the
// existing one. Idempotence rests on the unique (ad_id, buyer_id) index:
// a concurrent duplicate insert loses and we re-fetch.
func (s *conversationService) StartConversation(adID, buyerID uint64) (*domain.ConversationResponse, error) {
	ad, err := s.adRepo.FindByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAdNotFound
		}
		return nil, err
	}
	if ad.Status == domain.AdStatusDeleted {
		return nil, common.ErrAdNotFound
	}
	if ad.UserID == buyerID {
		return nil, common.ErrOwnAd
	}
	if !ad.Contactable(time.Now()) {
		return nil, common.ErrMessagingDisabled
	}

	if existing, err := s.convRepo.FindByAdAndBuyer(adID, buyerID); err == nil {
		return toConversationResponse(existing, ad.Title), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv := &domain.Conversation{
		AdID:      adID,
		BuyerID:   buyerID,
		SellerID:  ad.UserID,
		ExpiresAt: time.Now().Add(s.convTTL),
	}
	if err := s.convRepo.Create(conv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.convRepo.FindByAdAndBuyer(adID, buyerID)
			if ferr != nil {
				return nil, ferr
			}
			return toConversationResponse(existing, ad.Title), nil
		}
		return nil, err
	}
	return toConversationResponse(conv, ad.Title), nil
}

func (s *conversationService) ListConversations(userID uint64, page, limit int) ([]*domain.ConversationResponse, *common.Meta, error) {
	normalizePaging(&page, &limit)

	convs, total, err := s.convRepo.ListByParticipant(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	// Resolve ad titles in one batch for inbox context
	adIDs := make([]uint64, len(convs))
	for i, c := range convs {
		adIDs[i] = c.AdID
	}
	titleByAd := make(map[uint64]string, len(adIDs))
	if ads, err := s.adRepo.FindByIDs(adIDs); err == nil {
		for _, ad := range ads {
			titleByAd[ad.ID] = ad.Title
		}
	}

	responses := make([]*domain.ConversationResponse, len(convs))
	for i, c := range convs {
		responses[i] = toConversationResponse(c, titleByAd[c.AdID])
	}
	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// ListMessages returns the decrypted thread for a participant. History
// stays readable after expiry. A message that fails authentication is
// rendered as a placeholder instead of failing the whole read.
func (s *conversationService) ListMessages(conversationID, userID uint64) ([]*domain.MessageResponse, error) {
	conv, err := s.authorizedConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(conv.ID, s.secret)
	if err != nil {
		return nil, err
	}

	messages, err := s.msgRepo.ListByConversation(conv.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		content, err := crypto.Decrypt(m.EncryptedContent, m.Nonce, key)
		if err != nil {
			pkglogger.GetLogger().Warn().
				Uint64("conversation_id", conv.ID).
				Uint64("message_id", m.ID).
				Msg("message failed decryption")
			content = domain.UnreadablePlaceholder
		}
		responses[i] = &domain.MessageResponse{
			ID:        m.ID,
			SenderID:  m.SenderID,
			IsOwn:     m.SenderID == userID,
			Content:   content,
			CreatedAt: m.CreatedAt,
		}
	}
	return responses, nil
}

func (s *conversationService) SendMessage(conversationID, userID uint64, content string) (*domain.MessageResponse, error) {
	conv, err := s.authorizedConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conv.IsExpired(time.Now()) {
		return nil, common.ErrConversationExpired
	}

	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, common.ErrInvalidInput
	}
	if word, blocked := s.filter.Match(content); blocked {
		pkglogger.GetLogger().Info().
			Uint64("conversation_id", conv.ID).
			Str("word", word).
			Msg("message blocked by word filter")
		return nil, common.ErrMessageBlocked
	}

	key, err := crypto.DeriveKey(conv.ID, s.secret)
	if err != nil {
		return nil, err
	}
	ciphertext, nonce, err := crypto.Encrypt(content, key)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID:   conv.ID,
		SenderID:         userID,
		EncryptedContent: ciphertext,
		Nonce:            nonce,
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	if err := s.convRepo.Touch(conv.ID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("conversation_id", conv.ID).
			Msg("conversation touch failed")
	}

	return &domain.MessageResponse{
		ID:        msg.ID,
		SenderID:  userID,
		IsOwn:     true,
		Content:   content,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// authorizedConversation loads a conversation and checks participation.
// Non-participants get ErrForbidden, not a 404: the conversation id alone
// does not reveal anything sensitive.
func (s *conversationService) authorizedConversation(id, userID uint64) (*domain.Conversation, error) {
	conv, err := s.convRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, common.ErrForbidden
	}
	return conv, nil
}

func toConversationResponse(c *domain.Conversation, adTitle string) *domain.ConversationResponse {
	return &domain.ConversationResponse{
		ID:        c.ID,
		AdID:      c.AdID,
		AdTitle:   adTitle,
		BuyerID:   c.BuyerID,
		SellerID:  c.SellerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}
