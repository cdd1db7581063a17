package domain

import "time"

// ReportReason classifies an abuse report
type ReportReason string

const (
	ReasonIllegalContent ReportReason = "illegal_content"
	ReasonFraud          ReportReason = "fraud"
	ReasonSpam           ReportReason = "spam"
	ReasonOffensive      ReportReason = "offensive"
	ReasonWrongCategory  ReportReason = "wrong_category"
	ReasonOther          ReportReason = "other"
)

// ValidReason reports whether r is a known report reason
func ValidReason(r ReportReason) bool {
	switch r {
	case ReasonIllegalContent, ReasonFraud, ReasonSpam,
		ReasonOffensive, ReasonWrongCategory, ReasonOther:
		return true
	}
	return false
}

// ReportStatus is the moderation queue state of a report
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report is an abuse report against an ad. Reports are never resolved
// directly; resolution is a side effect of moderator action on the ad.
type Report struct {
	ID         uint64       `gorm:"primaryKey" json:"id"`
	AdID       uint64       `gorm:"column:ad_id;not null;index" json:"ad_id"`
	Reason     ReportReason `gorm:"column:reason;size:30;not null" json:"reason"`
	Details    string       `gorm:"column:details;type:text" json:"details,omitempty"`
	ReporterID uint64       `gorm:"column:reporter_id" json:"-"`
	ReporterIP string       `gorm:"column:reporter_ip;size:45" json:"-"`
	Status     ReportStatus `gorm:"column:status;size:20;default:pending;index" json:"status"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ResolvedAt *time.Time   `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}

// CreateReportRequest is the report submission payload
type CreateReportRequest struct {
	Reason  ReportReason `json:"reason" binding:"required"`
	Details string       `json:"details" binding:"max=1000"`
}

// ReportListResponse is a pending report with ad context for moderators
type ReportListResponse struct {
	ID        uint64       `json:"id"`
	AdID      uint64       `json:"ad_id"`
	AdTitle   string       `json:"ad_title,omitempty"`
	AdStatus  AdStatus     `json:"ad_status,omitempty"`
	Reason    ReportReason `json:"reason"`
	Details   string       `json:"details,omitempty"`
	Status    ReportStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
