package service

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
	"github.com/annonstorg/annonstorg-backend/pkg/search"
	"github.com/annonstorg/annonstorg-backend/pkg/storage"
)

// BlobStorage is the object-storage surface the ad service needs;
// satisfied by *storage.Client
type BlobStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// AdIndex is the search-index surface; satisfied by *search.Client.
// A nil AdIndex disables full-text search (SQL fallback kicks in).
type AdIndex interface {
	IndexAd(ctx context.Context, doc search.AdDocument) error
	RemoveAd(ctx context.Context, adID uint64) error
	SearchAds(ctx context.Context, query, categorySlug, countySlug string, from, size int) ([]uint64, int64, error)
}

// AdService implements the listing lifecycle
type AdService interface {
	CreateAd(userID uint64, req *domain.CreateAdRequest) (*domain.AdResponse, error)
	GetAd(id uint64) (*domain.AdResponse, error)
	UpdateAd(id, userID uint64, req *domain.UpdateAdRequest) error
	DeleteAd(id, userID uint64) error
	ListAds(params *repository.AdListParams) ([]*domain.AdListResponse, *common.Meta, error)
	ListMyAds(userID uint64, page, limit int) ([]*domain.AdListResponse, *common.Meta, error)
	SearchAds(query, categorySlug, countySlug string, page, limit int) ([]*domain.AdListResponse, *common.Meta, error)
	AddImage(adID, userID uint64, filename, contentType string, body io.Reader) (*domain.ImageResponse, error)
	RemoveImage(adID, imageID, userID uint64) error
}

type adService struct {
	adRepo    repository.AdRepository
	imageRepo repository.ImageRepository
	taxonomy  *domain.Taxonomy
	blobs     BlobStorage
	index     AdIndex // may be nil
	adTTL     time.Duration
}

// NewAdService creates the ad service. index may be nil when Elasticsearch
// is not configured.
func NewAdService(
	adRepo repository.AdRepository,
	imageRepo repository.ImageRepository,
	taxonomy *domain.Taxonomy,
	blobs BlobStorage,
	index AdIndex,
	adTTLDays int,
) AdService {
	return &adService{
		adRepo:    adRepo,
		imageRepo: imageRepo,
		taxonomy:  taxonomy,
		blobs:     blobs,
		index:     index,
		adTTL:     time.Duration(adTTLDays) * 24 * time.Hour,
	}
}

func (s *adService) CreateAd(userID uint64, req *domain.CreateAdRequest) (*domain.AdResponse, error) {
	if err := s.validateSlugs(req.CategorySlug, req.SubcategorySlug, req.CountySlug); err != nil {
		return nil, err
	}

	allowMessages := true
	if req.AllowMessages != nil {
		allowMessages = *req.AllowMessages
	}
	// A listing nobody can reach is useless
	if !allowMessages && req.ContactPhone == "" {
		return nil, common.ErrNoContactMethod
	}

	ad := &domain.Ad{
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		CategorySlug:    req.CategorySlug,
		SubcategorySlug: req.SubcategorySlug,
		CountySlug:      req.CountySlug,
		Status:          domain.AdStatusOK,
		AllowMessages:   allowMessages,
		ContactPhone:    req.ContactPhone,
		ExpiresAt:       time.Now().Add(s.adTTL),
	}

	if err := s.adRepo.Create(ad); err != nil {
		return nil, err
	}

	s.indexAd(ad)
	return s.toAdResponse(ad), nil
}

func (s *adService) GetAd(id uint64) (*domain.AdResponse, error) {
	ad, err := s.findVisible(id)
	if err != nil {
		return nil, err
	}
	return s.toAdResponse(ad), nil
}

func (s *adService) UpdateAd(id, userID uint64, req *domain.UpdateAdRequest) error {
	ad, err := s.findVisible(id)
	if err != nil {
		return err
	}
	if ad.UserID != userID {
		return common.ErrForbidden
	}
	if !ad.Editable() {
		return common.ErrInvalidInput
	}

	// Field-level patch: only supplied fields change
	if req.Title != nil {
		ad.Title = *req.Title
	}
	if req.Description != nil {
		ad.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return common.ErrInvalidInput
		}
		ad.Price = *req.Price
	}
	if req.CategorySlug != nil {
		ad.CategorySlug = *req.CategorySlug
		if req.SubcategorySlug == nil {
			ad.SubcategorySlug = ""
		}
	}
	if req.SubcategorySlug != nil {
		ad.SubcategorySlug = *req.SubcategorySlug
	}
	if req.CountySlug != nil {
		ad.CountySlug = *req.CountySlug
	}
	if req.Status != nil {
		// Owners only toggle ok<->sold; moderation states have their own path
		if *req.Status != domain.AdStatusOK && *req.Status != domain.AdStatusSold {
			return common.ErrInvalidInput
		}
		ad.Status = *req.Status
	}
	if req.AllowMessages != nil {
		ad.AllowMessages = *req.AllowMessages
	}
	if req.ContactPhone != nil {
		ad.ContactPhone = *req.ContactPhone
	}

	if err := s.validateSlugs(ad.CategorySlug, ad.SubcategorySlug, ad.CountySlug); err != nil {
		return err
	}
	if !ad.AllowMessages && ad.ContactPhone == "" {
		return common.ErrNoContactMethod
	}

	if err := s.adRepo.Update(ad); err != nil {
		return err
	}

	s.indexAd(ad)
	return nil
}

// DeleteAd is the owner-initiated soft delete: the row flips to `deleted`
// and image blobs go away immediately, the rest waits for the purge sweep.
// Calling it twice is a no-op the second time.
func (s *adService) DeleteAd(id, userID uint64) error {
	ad, err := s.adRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAdNotFound
		}
		return err
	}
	if ad.UserID != userID {
		return common.ErrForbidden
	}
	if ad.Status == domain.AdStatusDeleted {
		return nil
	}

	ctx := context.Background()
	for _, img := range ad.Images {
		if s.blobs != nil {
			if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
				pkglogger.GetLogger().Warn().Err(err).
					Uint64("ad_id", ad.ID).Str("key", img.StorageKey).
					Msg("image blob delete failed during ad delete")
			}
		}
	}
	if err := s.imageRepo.DeleteByAd(ad.ID); err != nil {
		return err
	}
	if err := s.adRepo.UpdateStatus(ad.ID, domain.AdStatusDeleted); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.RemoveAd(ctx, ad.ID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("ad_id", ad.ID).
				Msg("search index removal failed")
		}
	}
	return nil
}

func (s *adService) ListAds(params *repository.AdListParams) ([]*domain.AdListResponse, *common.Meta, error) {
	normalizePaging(&params.Page, &params.Limit)

	ads, total, err := s.adRepo.List(params)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.AdListResponse, len(ads))
	for i, ad := range ads {
		responses[i] = s.toAdListResponse(ad)
	}
	return responses, &common.Meta{Page: params.Page, Limit: params.Limit, Total: total}, nil
}

func (s *adService) ListMyAds(userID uint64, page, limit int) ([]*domain.AdListResponse, *common.Meta, error) {
	normalizePaging(&page, &limit)

	ads, total, err := s.adRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.AdListResponse, len(ads))
	for i, ad := range ads {
		responses[i] = s.toAdListResponse(ad)
	}
	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// SearchAds uses Elasticsearch when available and falls back to an ILIKE
// scan otherwise. ES results are re-fetched from Postgres so stale index
// entries (deleted/expired ads) drop out.
func (s *adService) SearchAds(query, categorySlug, countySlug string, page, limit int) ([]*domain.AdListResponse, *common.Meta, error) {
	normalizePaging(&page, &limit)

	if s.index == nil {
		return s.ListAds(&repository.AdListParams{
			CategorySlug: categorySlug,
			CountySlug:   countySlug,
			Query:        query,
			Page:         page,
			Limit:        limit,
		})
	}

	ids, total, err := s.index.SearchAds(context.Background(), query, categorySlug, countySlug, (page-1)*limit, limit)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("search index query failed, using sql fallback")
		return s.ListAds(&repository.AdListParams{
			CategorySlug: categorySlug,
			CountySlug:   countySlug,
			Query:        query,
			Page:         page,
			Limit:        limit,
		})
	}

	ads, err := s.adRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uint64]*domain.Ad, len(ads))
	for _, ad := range ads {
		byID[ad.ID] = ad
	}

	now := time.Now()
	responses := make([]*domain.AdListResponse, 0, len(ids))
	for _, id := range ids {
		ad, ok := byID[id]
		if !ok || ad.EffectiveStatus(now) != domain.AdStatusOK {
			continue
		}
		responses = append(responses, s.toAdListResponse(ad))
	}
	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *adService) AddImage(adID, userID uint64, filename, contentType string, body io.Reader) (*domain.ImageResponse, error) {
	ad, err := s.findVisible(adID)
	if err != nil {
		return nil, err
	}
	if ad.UserID != userID {
		return nil, common.ErrForbidden
	}

	count, err := s.imageRepo.CountByAd(adID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxImagesPerAd {
		return nil, common.ErrTooManyImages
	}
	if s.blobs == nil {
		return nil, errors.New("object storage not configured")
	}

	key, err := s.blobs.Upload(context.Background(), storage.NewImageKey(adID, filename), body, contentType)
	if err != nil {
		return nil, err
	}

	img := &domain.Image{AdID: adID, StorageKey: key, Filename: filename}
	if err := s.imageRepo.Create(img); err != nil {
		_ = s.blobs.Delete(context.Background(), key)
		return nil, err
	}

	return &domain.ImageResponse{ID: img.ID, URL: s.blobs.URL(key), Filename: img.Filename}, nil
}

func (s *adService) RemoveImage(adID, imageID, userID uint64) error {
	ad, err := s.findVisible(adID)
	if err != nil {
		return err
	}
	if ad.UserID != userID {
		return common.ErrForbidden
	}

	img, err := s.imageRepo.FindByID(imageID)
	if err != nil || img.AdID != adID {
		return common.ErrNotFound
	}

	if s.blobs != nil {
		if err := s.blobs.Delete(context.Background(), img.StorageKey); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", img.StorageKey).
				Msg("image blob delete failed")
		}
	}
	return s.imageRepo.Delete(imageID)
}

// Helper functions

// findVisible loads an ad, treating missing and soft-deleted rows alike
func (s *adService) findVisible(id uint64) (*domain.Ad, error) {
	ad, err := s.adRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAdNotFound
		}
		return nil, err
	}
	if ad.Status == domain.AdStatusDeleted {
		return nil, common.ErrAdNotFound
	}
	return ad, nil
}

func (s *adService) validateSlugs(category, subcategory, county string) error {
	if !s.taxonomy.ValidCategory(category) {
		return common.ErrInvalidCategory
	}
	if !s.taxonomy.ValidSubcategory(category, subcategory) {
		return common.ErrInvalidCategory
	}
	if !s.taxonomy.ValidCounty(county) {
		return common.ErrInvalidCounty
	}
	return nil
}

// indexAd pushes the ad into the search index. Failures are logged only;
// the index is a read-model, never load-bearing for the write path
func (s *adService) indexAd(ad *domain.Ad) {
	if s.index == nil {
		return
	}
	doc := search.AdDocument{
		ID:           ad.ID,
		Title:        ad.Title,
		Description:  ad.Description,
		Price:        ad.Price,
		CategorySlug: ad.CategorySlug,
		CountySlug:   ad.CountySlug,
		CreatedAt:    ad.CreatedAt,
	}
	if err := s.index.IndexAd(context.Background(), doc); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("ad_id", ad.ID).
			Msg("search indexing failed")
	}
}

func (s *adService) toAdResponse(ad *domain.Ad) *domain.AdResponse {
	images := make([]domain.ImageResponse, len(ad.Images))
	for i, img := range ad.Images {
		url := img.StorageKey
		if s.blobs != nil {
			url = s.blobs.URL(img.StorageKey)
		}
		images[i] = domain.ImageResponse{ID: img.ID, URL: url, Filename: img.Filename}
	}

	return &domain.AdResponse{
		ID:              ad.ID,
		UserID:          ad.UserID,
		Title:           ad.Title,
		Description:     ad.Description,
		Price:           ad.Price,
		CategorySlug:    ad.CategorySlug,
		SubcategorySlug: ad.SubcategorySlug,
		CountySlug:      ad.CountySlug,
		Status:          ad.EffectiveStatus(time.Now()),
		AllowMessages:   ad.AllowMessages,
		ContactPhone:    ad.ContactPhone,
		Images:          images,
		CreatedAt:       ad.CreatedAt,
		UpdatedAt:       ad.UpdatedAt,
		ExpiresAt:       ad.ExpiresAt,
	}
}

func (s *adService) toAdListResponse(ad *domain.Ad) *domain.AdListResponse {
	var thumbnail string
	if len(ad.Images) > 0 {
		thumbnail = ad.Images[0].StorageKey
		if s.blobs != nil {
			thumbnail = s.blobs.URL(thumbnail)
		}
	}

	return &domain.AdListResponse{
		ID:           ad.ID,
		Title:        ad.Title,
		Price:        ad.Price,
		CategorySlug: ad.CategorySlug,
		CountySlug:   ad.CountySlug,
		Status:       ad.EffectiveStatus(time.Now()),
		Thumbnail:    thumbnail,
		CreatedAt:    ad.CreatedAt,
	}
}

func normalizePaging(page, limit *int) {
	if *page <= 0 {
		*page = 1
	}
	if *limit <= 0 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}
}
