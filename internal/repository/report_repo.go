package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// ReportRepository is the abuse report data access interface
type ReportRepository interface {
	Create(report *domain.Report) error
	ListPending(page, limit int) ([]*domain.Report, int64, error)
	ResolveByAd(adID uint64, resolvedAt time.Time) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *domain.Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) ListPending(page, limit int) ([]*domain.Report, int64, error) {
	var reports []*domain.Report
	var total int64

	query := r.db.Model(&domain.Report{}).Where("status = ?", domain.ReportStatusPending)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ResolveByAd transitions every pending report on an ad to resolved in one
// statement; running it again is a no-op
func (r *reportRepository) ResolveByAd(adID uint64, resolvedAt time.Time) error {
	return r.db.Model(&domain.Report{}).
		Where("ad_id = ? AND status = ?", adID, domain.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":      domain.ReportStatusResolved,
			"resolved_at": resolvedAt,
		}).Error
}
