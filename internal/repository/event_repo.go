package repository

import (
	"errors"
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *models.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepository) Update(e *models.Event) error {
	return r.db.Save(e).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var e models.Event
	if err := r.db.Preload("Cluster").First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns events, optionally only upcoming ones.
func (r *EventRepository) List(upcomingOnly bool, limit, offset int) ([]models.Event, int64, error) {
	q := r.db.Model(&models.Event{})
	if upcomingOnly {
		q = q.Where("starts_at >= ?", time.Now())
	}
	var total int64
	q.Count(&total)
	var list []models.Event
	err := q.Preload("Cluster").Order("starts_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
