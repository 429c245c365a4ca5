package models

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"
)

// GrantApplication is one funding request. Its status only moves
// through the guarded transitions in service.GrantService; every move
// appends a GrantStatusEntry in the same transaction so status and
// history cannot diverge.
type GrantApplication struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Code            string `gorm:"size:20;uniqueIndex;not null" json:"code"` // GA-<yyyymm>-<rand4>, immutable
	ApplicantID     uint   `gorm:"not null;index" json:"applicant_id"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Summary         string `gorm:"type:text" json:"summary"`
	AmountRequested int64  `gorm:"not null" json:"amount_requested"` // cents
	Status          string `gorm:"size:30;not null;index" json:"status"`

	// Disbursement ledger. Each field is written exactly once, by its
	// designated transition, and never decremented.
	AmountApproved            *int64 `json:"amount_approved"`
	InitialDisbursementAmount *int64 `json:"initial_disbursement_amount"`
	FinalDisbursementAmount   *int64 `json:"final_disbursement_amount"`

	EarlyReportRejections int `gorm:"not null;default:0" json:"early_report_rejections"`
	FinalReportRejections int `gorm:"not null;default:0" json:"final_report_rejections"`

	ResubmittedFromID *uint `gorm:"index" json:"resubmitted_from_id"`
	ResubmissionCount int   `gorm:"not null;default:0" json:"resubmission_count"`

	SubmittedAt time.Time      `json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Applicant User               `gorm:"foreignKey:ApplicantID" json:"-"`
	History   []GrantStatusEntry `gorm:"foreignKey:ApplicationID" json:"history,omitempty"`
	Files     []GrantReportFile  `gorm:"foreignKey:ApplicationID" json:"files,omitempty"`
}

func (GrantApplication) TableName() string {
	return "grant_applications"
}

// GrantStatusEntry is one append-only history row.
type GrantStatusEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	Status        string    `gorm:"size:30;not null" json:"status"`
	Notes         string    `gorm:"type:text" json:"notes"`
	ActorName     string    `gorm:"size:128" json:"actor_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func (GrantStatusEntry) TableName() string {
	return "grant_status_entries"
}

// GrantReportFile is one uploaded early or final report document.
type GrantReportFile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	Stage         string    `gorm:"size:10;not null" json:"stage"` // EARLY | FINAL
	StoragePath   string    `gorm:"size:512;not null" json:"storage_path"`
	Filename      string    `gorm:"size:255;not null" json:"filename"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

func (GrantReportFile) TableName() string {
	return "grant_report_files"
}

// NewGrantCode returns a human-readable application code for the given
// submission time, e.g. GA-202501-1234.
func NewGrantCode(t time.Time) string {
	return fmt.Sprintf("GA-%s-%04d", t.Format("200601"), rand.IntN(10000))
}
