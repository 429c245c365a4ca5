package repository

import (
	"errors"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type ItineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

func (r *ItineraryRepository) Create(it *models.Itinerary) error {
	return r.db.Create(it).Error
}

func (r *ItineraryRepository) Update(it *models.Itinerary) error {
	return r.db.Save(it).Error
}

func (r *ItineraryRepository) Delete(id, userID uint) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Itinerary{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItineraryRepository) GetByID(id uint) (*models.Itinerary, error) {
	var it models.Itinerary
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("day ASC, position ASC")
	}).Preload("Items.Cluster").First(&it, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *ItineraryRepository) ListByUser(userID uint) ([]models.Itinerary, error) {
	var list []models.Itinerary
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// AddItem inserts an item; adding the same cluster to the same day
// twice surfaces as ErrConflict.
func (r *ItineraryRepository) AddItem(item *models.ItineraryItem) error {
	err := r.db.Create(item).Error
	if err != nil && isDuplicateErr(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *ItineraryRepository) RemoveItem(itineraryID, itemID uint) error {
	res := r.db.Where("id = ? AND itinerary_id = ?", itemID, itineraryID).Delete(&models.ItineraryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
