package repository

import (
	"errors"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

type ClusterRepository struct {
	db *gorm.DB
}

func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

func (r *ClusterRepository) Create(c *models.Cluster) error {
	return r.db.Create(c).Error
}

func (r *ClusterRepository) CreateBatch(list []models.Cluster) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.Create(&list).Error
}

func (r *ClusterRepository) Update(c *models.Cluster) error {
	return r.db.Save(c).Error
}

func (r *ClusterRepository) Delete(id uint) error {
	return r.db.Delete(&models.Cluster{}, id).Error
}

func (r *ClusterRepository) GetByID(id uint) (*models.Cluster, error) {
	var c models.Cluster
	if err := r.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClusterRepository) GetByName(name string) (*models.Cluster, error) {
	var c models.Cluster
	if err := r.db.Where("name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns clusters with optional category/district/search filters.
func (r *ClusterRepository) List(category, district, search string, limit, offset int) ([]models.Cluster, int64, error) {
	q := r.db.Model(&models.Cluster{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if district != "" {
		q = q.Where("district = ?", district)
	}
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var total int64
	q.Count(&total)
	var list []models.Cluster
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// ListByOwner returns clusters owned by a tourism player.
func (r *ClusterRepository) ListByOwner(ownerID uint) ([]models.Cluster, error) {
	var list []models.Cluster
	err := r.db.Where("owner_id = ?", ownerID).Order("name ASC").Find(&list).Error
	return list, err
}

// AverageRating returns the mean review rating and review count for a cluster.
func (r *ClusterRepository) AverageRating(clusterID uint) (float64, int64, error) {
	var out struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("cluster_id = ?", clusterID).
		Scan(&out).Error
	return out.Avg, out.Count, err
}
