package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
	"github.com/annonstorg/annonstorg-backend/pkg/search"
)

// ModerationService is the moderator verdict on reported ads. Both verdicts
// resolve every pending report on the ad as a side effect; neither touches
// the reports directly beyond that.
type ModerationService interface {
	DisableAd(adID uint64) error
	ReviveAd(adID uint64) error
}

type moderationService struct {
	adRepo     repository.AdRepository
	reportRepo repository.ReportRepository
	index      AdIndex
}

// NewModerationService creates a new ModerationService. index may be nil
// when search indexing is not configured.
func NewModerationService(adRepo repository.AdRepository, reportRepo repository.ReportRepository, index AdIndex) ModerationService {
	return &moderationService{adRepo: adRepo, reportRepo: reportRepo, index: index}
}

// DisableAd takes a reported ad off the site. Repeating the call on an
// already-disabled ad is a no-op that still succeeds.
func (s *moderationService) DisableAd(adID uint64) error {
	ad, err := s.adRepo.FindByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAdNotFound
		}
		return err
	}

	if ad.Status != domain.AdStatusDeleted {
		if err := s.adRepo.UpdateStatus(adID, domain.AdStatusDeleted); err != nil {
			return err
		}
	}
	if err := s.reportRepo.ResolveByAd(adID, time.Now()); err != nil {
		pkglogger.GetLogger().Error().Err(err).
			Uint64("ad_id", adID).
			Msg("report resolution failed")
	}
	if s.index != nil {
		if err := s.index.RemoveAd(context.Background(), adID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Uint64("ad_id", adID).
				Msg("search index remove failed")
		}
	}

	pkglogger.GetLogger().Info().Uint64("ad_id", adID).Msg("ad disabled by moderator")
	return nil
}

// ReviveAd clears the reported flag and puts the ad back on the site
func (s *moderationService) ReviveAd(adID uint64) error {
	ad, err := s.adRepo.FindByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAdNotFound
		}
		return err
	}

	if ad.Status != domain.AdStatusOK {
		if err := s.adRepo.UpdateStatus(adID, domain.AdStatusOK); err != nil {
			return err
		}
	}
	if err := s.reportRepo.ResolveByAd(adID, time.Now()); err != nil {
		pkglogger.GetLogger().Error().Err(err).
			Uint64("ad_id", adID).
			Msg("report resolution failed")
	}
	if s.index != nil {
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
			pkglogger.GetLogger().Warn().Err(err).
				Uint64("ad_id", adID).
				Msg("search reindex failed")
		}
	}

	pkglogger.GetLogger().Info().Uint64("ad_id", adID).Msg("ad revived by moderator")
	return nil
}
