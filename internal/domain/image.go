package domain

import "time"

// Image is an ad photo; the blob lives in object storage under StorageKey
type Image struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	AdID       uint64    `gorm:"column:ad_id;not null;index" json:"ad_id"`
	StorageKey string    `gorm:"column:storage_key;size:255;not null" json:"-"`
	Filename   string    `gorm:"column:filename;size:255" json:"filename"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Image) TableName() string {
	return "ad_images"
}

// ImageResponse is an image in API responses
type ImageResponse struct {
	ID       uint64 `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
