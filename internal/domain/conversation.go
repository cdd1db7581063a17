package domain

import "time"

// Conversation is a private buyer↔seller thread scoped to one ad.
// At most one conversation exists per (ad, buyer) pair.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	AdID      uint64    `gorm:"column:ad_id;not null;uniqueIndex:idx_conversations_ad_buyer" json:"ad_id"`
	BuyerID   uint64    `gorm:"column:buyer_id;not null;uniqueIndex:idx_conversations_ad_buyer;index" json:"buyer_id"`
	SellerID  uint64    `gorm:"column:seller_id;not null;index" json:"seller_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expires_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// IsParticipant reports whether userID is the buyer or the seller
func (c *Conversation) IsParticipant(userID uint64) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// IsExpired reports whether the thread is past its write deadline.
// History stays readable after expiry; only sending is blocked.
func (c *Conversation) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ConversationResponse is a thread in inbox listings
type ConversationResponse struct {
	ID        uint64    `json:"id"`
	AdID      uint64    `json:"ad_id"`
	AdTitle   string    `json:"ad_title,omitempty"`
	BuyerID   uint64    `json:"buyer_id"`
	SellerID  uint64    `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
