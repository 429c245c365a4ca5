package models

import (
	"testing"
	"time"

	"jelajah/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNotificationVisibleTo(t *testing.T) {
	now := time.Now()
	uid := uint(7)

	personal := Notification{Audience: domain.AudienceUser, UserID: &uid}
	assert.True(t, personal.VisibleTo(7, domain.RoleUser, now))
	assert.False(t, personal.VisibleTo(8, domain.RoleUser, now))
	assert.False(t, personal.VisibleTo(8, domain.RoleAdmin, now), "admins do not see other users' personal rows")

	admins := Notification{Audience: domain.AudienceAdmins}
	assert.True(t, admins.VisibleTo(1, domain.RoleAdmin, now))
	assert.True(t, admins.VisibleTo(1, domain.RoleEditor, now))
	assert.False(t, admins.VisibleTo(1, domain.RolePlayer, now))
	assert.False(t, admins.VisibleTo(1, domain.RoleUser, now))

	grantAdmins := Notification{Audience: domain.AudienceGrantAdmins}
	assert.True(t, grantAdmins.VisibleTo(1, domain.RoleAdmin, now))
	assert.False(t, grantAdmins.VisibleTo(1, domain.RoleEditor, now), "only the approver role sees grant queue rows")

	banner := Notification{Audience: domain.AudienceGlobalBanner}
	assert.True(t, banner.VisibleTo(1, domain.RoleUser, now))
	assert.True(t, banner.VisibleTo(0, "", now))

	expired := now.Add(-time.Minute)
	oldBanner := Notification{Audience: domain.AudienceGlobalBanner, ExpiresAt: &expired}
	assert.False(t, oldBanner.VisibleTo(1, domain.RoleUser, now))
}

func TestNotificationReadAndClearSets(t *testing.T) {
	n := Notification{Audience: domain.AudienceGlobalBanner, ReadBy: "[]", ClearedBy: "[]"}

	assert.False(t, n.ReadByUser(3))
	assert.True(t, n.MarkRead(3))
	assert.False(t, n.MarkRead(3), "second mark is a no-op")
	assert.True(t, n.ReadByUser(3))
	assert.False(t, n.ReadByUser(4))

	// Reading never hides; clearing does.
	assert.True(t, n.VisibleTo(3, domain.RoleUser, time.Now()))
	assert.True(t, n.Clear(3))
	assert.False(t, n.Clear(3))
	assert.False(t, n.VisibleTo(3, domain.RoleUser, time.Now()))
	assert.True(t, n.VisibleTo(4, domain.RoleUser, time.Now()), "cleared state is per user")
}

func TestIDSetToleratesEmptyColumn(t *testing.T) {
	n := Notification{Audience: domain.AudienceGlobalBanner}
	assert.False(t, n.ReadByUser(1))
	assert.True(t, n.MarkRead(1))
	assert.Equal(t, "[1]", n.ReadBy)
}
