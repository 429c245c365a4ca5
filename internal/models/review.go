package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a public rating of a cluster. One review per user per
// cluster, enforced by the composite unique index.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClusterID uint           `gorm:"not null;uniqueIndex:idx_reviews_cluster_user" json:"cluster_id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_reviews_cluster_user" json:"user_id"`
	Rating    int            `gorm:"not null" json:"rating"` // 1..5
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Cluster Cluster `gorm:"foreignKey:ClusterID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
