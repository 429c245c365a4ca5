package repository

import (
	"errors"
	"strings"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review; a second review by the same user for the
// same cluster surfaces as ErrConflict.
func (r *ReviewRepository) Create(rev *models.Review) error {
	err := r.db.Create(rev).Error
	if err != nil && isDuplicateErr(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *ReviewRepository) Delete(id, userID uint) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	var rev models.Review
	if err := r.db.First(&rev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *ReviewRepository) ListByCluster(clusterID uint, limit, offset int) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Where("cluster_id = ?", clusterID).Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// isDuplicateErr detects unique-constraint violations across the MySQL
// and sqlite drivers.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
