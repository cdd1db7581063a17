package repository

import (
	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// ImageRepository is the ad image data access interface
type ImageRepository interface {
	Create(img *domain.Image) error
	FindByID(id uint64) (*domain.Image, error)
	FindByAd(adID uint64) ([]*domain.Image, error)
	CountByAd(adID uint64) (int64, error)
	Delete(id uint64) error
	DeleteByAd(adID uint64) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(img *domain.Image) error {
	return r.db.Create(img).Error
}

func (r *imageRepository) FindByID(id uint64) (*domain.Image, error) {
	var img domain.Image
	err := r.db.Where("id = ?", id).First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepository) FindByAd(adID uint64) ([]*domain.Image, error) {
	var images []*domain.Image
	err := r.db.Where("ad_id = ?", adID).Order("id ASC").Find(&images).Error
	return images, err
}

func (r *imageRepository) CountByAd(adID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Image{}).Where("ad_id = ?", adID).Count(&count).Error
	return count, err
}

func (r *imageRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.Image{}, id).Error
}

func (r *imageRepository) DeleteByAd(adID uint64) error {
	return r.db.Where("ad_id = ?", adID).Delete(&domain.Image{}).Error
}
