package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a board-published happening, optionally tied to a cluster.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Venue       string         `gorm:"size:255" json:"venue"`
	ClusterID   *uint          `gorm:"index" json:"cluster_id"`
	StartsAt    time.Time      `gorm:"index" json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at"`
	ImageURL    string         `gorm:"size:512" json:"image_url"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Cluster *Cluster `gorm:"foreignKey:ClusterID" json:"cluster,omitempty"`
}

func (Event) TableName() string {
	return "events"
}
