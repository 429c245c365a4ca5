package service

import (
	"testing"
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"
	"jelajah/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type notifEnv struct {
	db    *gorm.DB
	svc   *NotificationService
	repo  *repository.NotificationRepository
	admin *models.User
	users []*models.User
}

func newNotifEnv(t *testing.T) *notifEnv {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	repo := repository.NewNotificationRepository(db)
	e := &notifEnv{
		db:    db,
		svc:   NewNotificationService(repo, userRepo, nil),
		repo:  repo,
		admin: createUser(t, db, domain.RoleAdmin),
	}
	for i := 0; i < 3; i++ {
		e.users = append(e.users, createUser(t, db, domain.RoleUser))
	}
	return e
}

func TestBroadcastFansOutOneRowPerAccount(t *testing.T) {
	e := newNotifEnv(t)

	count, err := e.svc.BroadcastToAllUsers(e.admin.ID, "Festival road closures this weekend")
	require.NoError(t, err)
	assert.Equal(t, 4, count) // 3 users + the admin

	total, err := e.repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	// Each row is personally addressed; users see exactly their own.
	for _, u := range e.users {
		visible, err := e.svc.VisibleTo(u.ID, u.Role, 50, 0)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		require.NotNil(t, visible[0].UserID)
		assert.Equal(t, u.ID, *visible[0].UserID)
	}
}

func TestBroadcastDeniedForOrdinaryUser(t *testing.T) {
	e := newNotifEnv(t)

	_, err := e.svc.BroadcastToAllUsers(e.users[0].ID, "I am not staff")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// Denied before any insert: zero rows.
	total, err := e.repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSetBannerKeepsExactlyOne(t *testing.T) {
	e := newNotifEnv(t)

	_, err := e.svc.SetBanner(e.admin.ID, "First announcement", nil)
	require.NoError(t, err)
	banner, err := e.svc.SetBanner(e.admin.ID, "Second announcement", nil)
	require.NoError(t, err)

	n, err := e.repo.CountBanners()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	visible, err := e.svc.VisibleTo(e.users[0].ID, domain.RoleUser, 50, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, banner.Message, visible[0].Message)
}

func TestSetBannerValidation(t *testing.T) {
	e := newNotifEnv(t)
	_, err := e.svc.SetBanner(e.admin.ID, "", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.svc.SetBanner(e.users[0].ID, "nope", nil)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestExpiredBannerIsHidden(t *testing.T) {
	e := newNotifEnv(t)
	past := time.Now().Add(-time.Hour)
	_, err := e.svc.SetBanner(e.admin.ID, "Old news", &past)
	require.NoError(t, err)

	visible, err := e.svc.VisibleTo(e.users[0].ID, domain.RoleUser, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestAudienceVisibilityByRole(t *testing.T) {
	e := newNotifEnv(t)
	editor := createUser(t, e.db, domain.RoleEditor)
	appID := uint(42)

	require.NoError(t, e.svc.NotifyGrantAdmins("New application", &appID, domain.NotifTypeGrantSubmission))
	require.NoError(t, e.svc.NotifyAdmins("Player signed up", nil, domain.NotifTypeAnnouncement))

	// grant_admins rows reach the approver role only.
	adminSees, err := e.svc.VisibleTo(e.admin.ID, domain.RoleAdmin, 50, 0)
	require.NoError(t, err)
	assert.Len(t, adminSees, 2)

	editorSees, err := e.svc.VisibleTo(editor.ID, domain.RoleEditor, 50, 0)
	require.NoError(t, err)
	require.Len(t, editorSees, 1)
	assert.Equal(t, domain.AudienceAdmins, editorSees[0].Audience)

	userSees, err := e.svc.VisibleTo(e.users[0].ID, domain.RoleUser, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, userSees)
}

func TestMarkReadAndClear(t *testing.T) {
	e := newNotifEnv(t)
	u := e.users[0]
	require.NoError(t, e.svc.NotifyUser(u.ID, "Your application moved", nil, domain.NotifTypeGrantDecision))

	visible, err := e.svc.VisibleTo(u.ID, u.Role, 50, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	id := visible[0].ID
	assert.False(t, visible[0].ReadByUser(u.ID))

	require.NoError(t, e.svc.MarkRead(u.ID, u.Role, id))
	// Marking twice is a no-op, not an error.
	require.NoError(t, e.svc.MarkRead(u.ID, u.Role, id))

	n, err := e.repo.GetByID(id)
	require.NoError(t, err)
	assert.True(t, n.ReadByUser(u.ID))

	// Clearing hides the row for this user but keeps it for others.
	require.NoError(t, e.svc.Clear(u.ID, u.Role, id))
	visible, err = e.svc.VisibleTo(u.ID, u.Role, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// A different user cannot touch someone else's notification.
	err = e.svc.MarkRead(e.users[1].ID, domain.RoleUser, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
