package models

import (
	"time"

	"gorm.io/gorm"
)

// Itinerary is a per-user trip plan. Items are day-numbered cluster
// visits; the same cluster cannot appear twice on one day.
type Itinerary struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Days      int            `gorm:"not null;default:1" json:"days"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []ItineraryItem `gorm:"foreignKey:ItineraryID" json:"items,omitempty"`
}

func (Itinerary) TableName() string {
	return "itineraries"
}

type ItineraryItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ItineraryID uint      `gorm:"not null;uniqueIndex:idx_itinerary_day_cluster" json:"itinerary_id"`
	Day         int       `gorm:"not null;uniqueIndex:idx_itinerary_day_cluster" json:"day"`
	ClusterID   uint      `gorm:"not null;uniqueIndex:idx_itinerary_day_cluster" json:"cluster_id"`
	Position    int       `json:"position"`
	Note        string    `gorm:"size:512" json:"note"`
	CreatedAt   time.Time `json:"created_at"`

	Cluster Cluster `gorm:"foreignKey:ClusterID" json:"cluster,omitempty"`
}

func (ItineraryItem) TableName() string {
	return "itinerary_items"
}
