package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
)

// ReportService handles abuse reports against ads
type ReportService interface {
	SubmitReport(adID uint64, req *domain.CreateReportRequest, reporterID uint64, reporterIP string) error
	ListPending(page, limit int) ([]*domain.ReportListResponse, *common.Meta, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	adRepo     repository.AdRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo repository.ReportRepository, adRepo repository.AdRepository) ReportService {
	return &reportService{reportRepo: reportRepo, adRepo: adRepo}
}

// SubmitReport files a report against a live ad. The insert is best-effort:
// a storage failure is logged and the caller still gets an ack, so a flaky
// database never teaches reporters that reporting is broken. Flagging the
// ad itself is what pulls it out of public listings.
func (s *reportService) SubmitReport(adID uint64, req *domain.CreateReportRequest, reporterID uint64, reporterIP string) error {
	if !domain.ValidReason(req.Reason) {
		return common.ErrInvalidReason
	}

	ad, err := s.adRepo.FindByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAdNotFound
		}
		return err
	}
	if ad.Status == domain.AdStatusDeleted {
		return common.ErrAdNotFound
	}

	report := &domain.Report{
		AdID:       adID,
		Reason:     req.Reason,
		Details:    req.Details,
		ReporterID: reporterID,
		ReporterIP: reporterIP,
		Status:     domain.ReportStatusPending,
	}
	if err := s.reportRepo.Create(report); err != nil {
		pkglogger.GetLogger().Error().Err(err).
			Uint64("ad_id", adID).
			Str("reason", string(req.Reason)).
			Msg("report insert failed")
		return nil
	}

	if ad.EffectiveStatus(time.Now()) == domain.AdStatusOK {
		if err := s.adRepo.UpdateStatus(adID, domain.AdStatusReported); err != nil {
			pkglogger.GetLogger().Error().Err(err).
				Uint64("ad_id", adID).
				Msg("report status flag failed")
		}
	}
	return nil
}

// ListPending returns the moderation queue, newest first, with the reported
// ad's title and status attached so moderators can triage without a second
// lookup.
func (s *reportService) ListPending(page, limit int) ([]*domain.ReportListResponse, *common.Meta, error) {
	normalizePaging(&page, &limit)

	reports, total, err := s.reportRepo.ListPending(page, limit)
	if err != nil {
		return nil, nil, err
	}

	adIDs := make([]uint64, len(reports))
	for i, r := range reports {
		adIDs[i] = r.AdID
	}
	adByID := make(map[uint64]*domain.Ad, len(adIDs))
	if ads, err := s.adRepo.FindByIDs(adIDs); err == nil {
		for _, ad := range ads {
			adByID[ad.ID] = ad
		}
	}

	responses := make([]*domain.ReportListResponse, len(reports))
	for i, r := range reports {
		resp := &domain.ReportListResponse{
			ID:        r.ID,
			AdID:      r.AdID,
			Reason:    r.Reason,
			Details:   r.Details,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		}
		if ad, ok := adByID[r.AdID]; ok {
			resp.AdTitle = ad.Title
			resp.AdStatus = ad.EffectiveStatus(time.Now())
		}
		responses[i] = resp
	}
	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}
