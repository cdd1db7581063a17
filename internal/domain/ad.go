package domain

import (
	"time"
)

// AdStatus is the listing lifecycle state
type AdStatus string

const (
	AdStatusOK       AdStatus = "ok"       // live and messageable
	AdStatusSold     AdStatus = "sold"     // marked sold by owner
	AdStatusExpired  AdStatus = "expired"  // past expires_at
	AdStatusReported AdStatus = "reported" // flagged, pending moderation
	AdStatusDeleted  AdStatus = "deleted"  // terminal, awaiting purge
)

// MaxImagesPerAd caps how many images a listing can carry
const MaxImagesPerAd = 5

// Ad is a marketplace listing
type Ad struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	UserID          uint64    `gorm:"column:user_id;not null;index" json:"user_id"`
	Title           string    `gorm:"column:title;size:100;not null" json:"title"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	Price           int64     `gorm:"column:price;not null" json:"price"` // öre
	CategorySlug    string    `gorm:"column:category_slug;size:50;not null;index" json:"category_slug"`
	SubcategorySlug string    `gorm:"column:subcategory_slug;size:50" json:"subcategory_slug,omitempty"`
	CountySlug      string    `gorm:"column:county_slug;size:50;not null;index" json:"county_slug"`
	Status          AdStatus  `gorm:"column:status;size:20;default:ok;index" json:"status"`
	AllowMessages   bool      `gorm:"column:allow_messages;default:true" json:"allow_messages"`
	ContactPhone    string    `gorm:"column:contact_phone;size:30" json:"contact_phone,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	ExpiresAt       time.Time `gorm:"column:expires_at;index" json:"expires_at"`

	// Relations
	Images []Image `gorm:"foreignKey:AdID" json:"images,omitempty"`
}

func (Ad) TableName() string {
	return "ads"
}

// EffectiveStatus folds expiry into the stored state: an `ok` ad past its
// expires_at reads as expired without a background job flipping rows.
func (a *Ad) EffectiveStatus(now time.Time) AdStatus {
	if a.Status == AdStatusOK && now.After(a.ExpiresAt) {
		return AdStatusExpired
	}
	return a.Status
}

// Editable reports whether the owner may still patch fields
func (a *Ad) Editable() bool {
	return a.Status == AdStatusOK || a.Status == AdStatusSold
}

// Contactable reports whether a buyer can open a conversation
func (a *Ad) Contactable(now time.Time) bool {
	return a.EffectiveStatus(now) == AdStatusOK && a.AllowMessages
}

// CreateAdRequest is the ad creation payload
type CreateAdRequest struct {
	Title           string `json:"title" binding:"required,max=100"`
	Description     string `json:"description" binding:"required"`
	Price           int64  `json:"price" binding:"gte=0"`
	CategorySlug    string `json:"category" binding:"required"`
	SubcategorySlug string `json:"subcategory"`
	CountySlug      string `json:"county" binding:"required"`
	AllowMessages   *bool  `json:"allow_messages"`
	ContactPhone    string `json:"contact_phone" binding:"max=30"`
}

// UpdateAdRequest is a partial update: only non-nil fields change.
// Status accepts ok|sold only; moderation states go through admin routes.
type UpdateAdRequest struct {
	Title           *string   `json:"title" binding:"omitempty,max=100"`
	Description     *string   `json:"description"`
	Price           *int64    `json:"price" binding:"omitempty,gte=0"`
	CategorySlug    *string   `json:"category"`
	SubcategorySlug *string   `json:"subcategory"`
	CountySlug      *string   `json:"county"`
	Status          *AdStatus `json:"status"`
	AllowMessages   *bool     `json:"allow_messages"`
	ContactPhone    *string   `json:"contact_phone" binding:"omitempty,max=30"`
}

// AdResponse is the detail view of a listing
type AdResponse struct {
	ID              uint64          `json:"id"`
	UserID          uint64          `json:"user_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           int64           `json:"price"`
	CategorySlug    string          `json:"category"`
	SubcategorySlug string          `json:"subcategory,omitempty"`
	CountySlug      string          `json:"county"`
	Status          AdStatus        `json:"status"`
	AllowMessages   bool            `json:"allow_messages"`
	ContactPhone    string          `json:"contact_phone,omitempty"`
	Images          []ImageResponse `json:"images"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

// AdListResponse is the compact list view
type AdListResponse struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Price        int64     `json:"price"`
	CategorySlug string    `json:"category"`
	CountySlug   string    `json:"county"`
	Status       AdStatus  `json:"status"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
