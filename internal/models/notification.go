package models

import (
	"encoding/json"
	"time"

	"jelajah/internal/domain"
)

// Notification is a message routed to a specific user or to one of the
// broadcast audiences (admins, grant_admins, global_banner). Visibility
// is computed at read time, not stored; ReadBy and ClearedBy are
// monotonically growing JSON sets of user ids.
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Audience      string     `gorm:"size:20;not null;index" json:"audience"`
	UserID        *uint      `gorm:"index" json:"user_id"` // set only when Audience == user
	Type          string     `gorm:"size:50;not null;index" json:"type"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	ApplicationID *uint      `gorm:"index" json:"application_id"` // related grant application
	ExpiresAt     *time.Time `json:"expires_at"`
	ReadBy        string     `gorm:"type:text;not null;default:'[]'" json:"-"`
	ClearedBy     string     `gorm:"type:text;not null;default:'[]'" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// VisibleTo reports whether the notification should appear for the
// given user and role: directly addressed, admins class for elevated
// roles, grant_admins for the ADMIN role only, global_banner for
// everyone. Cleared and expired rows are hidden.
func (n *Notification) VisibleTo(userID uint, role string, now time.Time) bool {
	if n.ExpiresAt != nil && now.After(*n.ExpiresAt) {
		return false
	}
	if idSetHas(n.ClearedBy, userID) {
		return false
	}
	switch n.Audience {
	case domain.AudienceUser:
		return n.UserID != nil && *n.UserID == userID
	case domain.AudienceAdmins:
		return domain.IsElevated(role)
	case domain.AudienceGrantAdmins:
		return role == domain.RoleAdmin
	case domain.AudienceGlobalBanner:
		return true
	}
	return false
}

// ReadByUser reports whether userID has read the notification.
func (n *Notification) ReadByUser(userID uint) bool {
	return idSetHas(n.ReadBy, userID)
}

// MarkRead adds userID to the read set; returns false if already present.
func (n *Notification) MarkRead(userID uint) bool {
	next, added := idSetAdd(n.ReadBy, userID)
	n.ReadBy = next
	return added
}

// Clear adds userID to the cleared set; returns false if already present.
func (n *Notification) Clear(userID uint) bool {
	next, added := idSetAdd(n.ClearedBy, userID)
	n.ClearedBy = next
	return added
}

func idSetHas(raw string, id uint) bool {
	var ids []uint
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func idSetAdd(raw string, id uint) (string, bool) {
	var ids []uint
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &ids)
	}
	for _, v := range ids {
		if v == id {
			return raw, false
		}
	}
	ids = append(ids, id)
	b, _ := json.Marshal(ids)
	return string(b), true
}
