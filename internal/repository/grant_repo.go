package repository

import (
	"errors"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// CreateWithHistory inserts a new application and its first history
// entry in one transaction.
func (r *GrantRepository) CreateWithHistory(app *models.GrantApplication, entry *models.GrantStatusEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		entry.ApplicationID = app.ID
		return tx.Create(entry).Error
	})
}

// SaveTransition persists a status change and appends its history entry
// atomically. Status and history must never diverge, so callers go
// through this rather than saving the application directly.
func (r *GrantRepository) SaveTransition(app *models.GrantApplication, entry *models.GrantStatusEntry, files ...*models.GrantReportFile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(app).Error; err != nil {
			return err
		}
		entry.ApplicationID = app.ID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		for _, f := range files {
			f.ApplicationID = app.ID
			if err := tx.Create(f).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GrantRepository) GetByID(id uint) (*models.GrantApplication, error) {
	var app models.GrantApplication
	err := r.db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Preload("Files").First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *GrantRepository) GetByCode(code string) (*models.GrantApplication, error) {
	var app models.GrantApplication
	err := r.db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Preload("Files").Where("code = ?", code).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *GrantRepository) ListByApplicant(applicantID uint) ([]models.GrantApplication, error) {
	var list []models.GrantApplication
	err := r.db.Where("applicant_id = ?", applicantID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// List returns applications with an optional status filter, newest first.
func (r *GrantRepository) List(status string, limit, offset int) ([]models.GrantApplication, int64, error) {
	q := r.db.Model(&models.GrantApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.GrantApplication
	err := q.Preload("Applicant").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// CountByStatus returns application counts grouped by status.
func (r *GrantRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.GrantApplication{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
