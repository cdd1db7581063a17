package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// AdListParams filters and paginates the public ad listing
type AdListParams struct {
	CategorySlug string
	CountySlug   string
	Query        string // ILIKE fallback search, optional
	Page         int
	Limit        int
}

// AdRepository is the ad data access interface
type AdRepository interface {
	Create(ad *domain.Ad) error
	FindByID(id uint64) (*domain.Ad, error)
	FindByIDs(ids []uint64) ([]*domain.Ad, error)
	Update(ad *domain.Ad) error
	UpdateStatus(id uint64, status domain.AdStatus) error
	List(params *AdListParams) ([]*domain.Ad, int64, error)
	ListByUser(userID uint64, page, limit int) ([]*domain.Ad, int64, error)
	ListPurgeable(cutoff time.Time) ([]*domain.Ad, error)
	Delete(id uint64) error
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository creates a new AdRepository
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ad *domain.Ad) error {
	return r.db.Create(ad).Error
}

func (r *adRepository) FindByID(id uint64) (*domain.Ad, error) {
	var ad domain.Ad
	err := r.db.Preload("Images").Where("id = ?", id).First(&ad).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *adRepository) FindByIDs(ids []uint64) ([]*domain.Ad, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ads []*domain.Ad
	err := r.db.Preload("Images").Where("id IN ?", ids).Find(&ads).Error
	return ads, err
}

func (r *adRepository) Update(ad *domain.Ad) error {
	return r.db.Save(ad).Error
}

func (r *adRepository) UpdateStatus(id uint64, status domain.AdStatus) error {
	return r.db.Model(&domain.Ad{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *adRepository) List(params *AdListParams) ([]*domain.Ad, int64, error) {
	var ads []*domain.Ad
	var total int64

	query := r.db.Model(&domain.Ad{}).
		Where("status = ?", domain.AdStatusOK).
		Where("expires_at > ?", time.Now())

	if params.CategorySlug != "" {
		query = query.Where("category_slug = ?", params.CategorySlug)
	}
	if params.CountySlug != "" {
		query = query.Where("county_slug = ?", params.CountySlug)
	}
	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (params.Page - 1) * params.Limit
	if err := query.Preload("Images").Order("created_at DESC").
		Offset(offset).Limit(params.Limit).Find(&ads).Error; err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func (r *adRepository) ListByUser(userID uint64, page, limit int) ([]*domain.Ad, int64, error) {
	var ads []*domain.Ad
	var total int64

	query := r.db.Model(&domain.Ad{}).
		Where("user_id = ? AND status <> ?", userID, domain.AdStatusDeleted)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Preload("Images").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&ads).Error; err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

// ListPurgeable selects ads eligible for hard deletion: rows parked in a
// terminal-ish state for longer than the retention window, plus `ok` rows
// whose expiry passed long enough ago (expiry is computed on read, so the
// status column never flips to expired by itself).
func (r *adRepository) ListPurgeable(cutoff time.Time) ([]*domain.Ad, error) {
	var ads []*domain.Ad
	err := r.db.Preload("Images").
		Where("(status IN ? AND updated_at < ?) OR (status = ? AND expires_at < ?)",
			[]domain.AdStatus{domain.AdStatusDeleted, domain.AdStatusExpired, domain.AdStatusSold},
			cutoff, domain.AdStatusOK, cutoff).
		Order("id ASC").
		Find(&ads).Error
	return ads, err
}

func (r *adRepository) Delete(id uint64) error {
	return r.db.Unscoped().Delete(&domain.Ad{}, id).Error
}
