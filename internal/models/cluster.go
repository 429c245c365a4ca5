package models

import (
	"time"

	"gorm.io/gorm"
)

// Cluster is a tourism point of interest (attraction, homestay, food
// spot, ...). Owned either by the board (elevated staff) or by a
// tourism player account.
type Cluster struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	Category    string         `gorm:"size:40;not null;index" json:"category"`
	District    string         `gorm:"size:64;index" json:"district"`
	Description string         `gorm:"type:text" json:"description"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	ImageURL    string         `gorm:"size:512" json:"image_url"`
	OwnerID     *uint          `gorm:"index" json:"owner_id"` // nil for board-managed clusters
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Cluster) TableName() string {
	return "clusters"
}
