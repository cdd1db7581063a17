package service

import (
	"context"
	"time"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
)

// PurgeStats summarizes one sweep run
type PurgeStats struct {
	Candidates    int
	AdsPurged     int
	Conversations int
	Images        int
	Errors        int
}

// PurgeService hard-deletes ads that have sat in a terminal state past the
// grace window, together with their images, conversations and ciphertext.
type PurgeService interface {
	Run(ctx context.Context, dryRun bool) (*PurgeStats, error)
}

type purgeService struct {
	adRepo    repository.AdRepository
	imageRepo repository.ImageRepository
	convRepo  repository.ConversationRepository
	msgRepo   repository.MessageRepository
	blobs     BlobStorage
	index     AdIndex
	grace     time.Duration
}

// NewPurgeService creates the purge sweep. blobs and index may be nil when
// the corresponding backend is not configured. graceDays is how long a
// purge-eligible ad is left untouched before hard deletion.
func NewPurgeService(
	adRepo repository.AdRepository,
	imageRepo repository.ImageRepository,
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	blobs BlobStorage,
	index AdIndex,
	graceDays int,
) PurgeService {
	return &purgeService{
		adRepo:    adRepo,
		imageRepo: imageRepo,
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		blobs:     blobs,
		index:     index,
		grace:     time.Duration(graceDays) * 24 * time.Hour,
	}
}

// Run executes one sweep. Each ad is purged independently: a failure on one
// is logged, counted, and never stops the rest. The sweep is safe to re-run;
// whatever survived a failed pass is picked up next time.
func (s *purgeService) Run(ctx context.Context, dryRun bool) (*PurgeStats, error) {
	cutoff := time.Now().Add(-s.grace)
	stats := &PurgeStats{}

	ads, err := s.adRepo.ListPurgeable(cutoff)
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(ads)

	log := pkglogger.GetLogger()
	for _, ad := range ads {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if dryRun {
			log.Info().Uint64("ad_id", ad.ID).
				Str("status", string(ad.Status)).
				Time("updated_at", ad.UpdatedAt).
				Msg("would purge ad")
			continue
		}
		if err := s.purgeAd(ctx, ad, stats); err != nil {
			log.Error().Err(err).Uint64("ad_id", ad.ID).Msg("ad purge failed")
			stats.Errors++
			continue
		}
		stats.AdsPurged++
	}

	log.Info().
		Int("candidates", stats.Candidates).
		Int("purged", stats.AdsPurged).
		Int("conversations", stats.Conversations).
		Int("images", stats.Images).
		Int("errors", stats.Errors).
		Bool("dry_run", dryRun).
		Msg("purge sweep finished")
	return stats, nil
}

// purgeAd removes one ad and everything hanging off it. Order matters:
// blobs and ciphertext go before the rows referencing them, and the ad row
// goes last so a partial failure leaves the ad eligible for the next sweep.
func (s *purgeService) purgeAd(ctx context.Context, ad *domain.Ad, stats *PurgeStats) error {
	log := pkglogger.GetLogger()

	for _, img := range ad.Images {
		if s.blobs != nil {
			if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
				log.Warn().Err(err).
					Uint64("ad_id", ad.ID).
					Str("key", img.StorageKey).
					Msg("blob delete failed")
			}
		}
	}

	convs, err := s.convRepo.FindByAd(ad.ID)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if err := s.msgRepo.DeleteByConversation(conv.ID); err != nil {
			return err
		}
		if err := s.convRepo.Delete(conv.ID); err != nil {
			return err
		}
		stats.Conversations++
	}

	if err := s.imageRepo.DeleteByAd(ad.ID); err != nil {
		return err
	}
	stats.Images += len(ad.Images)

	if err := s.adRepo.Delete(ad.ID); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.RemoveAd(ctx, ad.ID); err != nil {
			log.Warn().Err(err).Uint64("ad_id", ad.ID).Msg("search index remove failed")
		}
	}

	log.Info().Uint64("ad_id", ad.ID).
		Str("status", string(ad.Status)).
		Int("conversations", len(convs)).
		Int("images", len(ad.Images)).
		Msg("ad purged")
	return nil
}
