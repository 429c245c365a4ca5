package repository

import (
	"errors"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) CreateBatch(list []models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.Create(&list).Error
}

func (r *NotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Save(n *models.Notification) error {
	return r.db.Save(n).Error
}

// ListCandidatesFor returns rows that could be visible to the given
// user and role; per-user cleared/expired filtering happens in the
// service because those live in JSON text columns. Collection sizes
// are small, so the over-fetch is acceptable.
func (r *NotificationRepository) ListCandidatesFor(userID uint, role string, limit, offset int) ([]models.Notification, error) {
	audiences := []string{domain.AudienceGlobalBanner}
	if domain.IsElevated(role) {
		audiences = append(audiences, domain.AudienceAdmins)
	}
	if role == domain.RoleAdmin {
		audiences = append(audiences, domain.AudienceGrantAdmins)
	}
	var list []models.Notification
	err := r.db.Where("(audience = ? AND user_id = ?) OR audience IN ?", domain.AudienceUser, userID, audiences).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// DeleteBanners hard-deletes all global_banner rows. Called before a
// new banner is inserted so at most one is active.
func (r *NotificationRepository) DeleteBanners() error {
	return r.db.Where("audience = ?", domain.AudienceGlobalBanner).Delete(&models.Notification{}).Error
}

// CountBanners returns the number of global_banner rows.
func (r *NotificationRepository) CountBanners() (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).Where("audience = ?", domain.AudienceGlobalBanner).Count(&n).Error
	return n, err
}

// Count returns the total notification row count.
func (r *NotificationRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).Count(&n).Error
	return n, err
}
