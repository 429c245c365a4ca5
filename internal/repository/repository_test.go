package repository

import (
	"fmt"
	"testing"
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Cluster{},
		&models.Event{},
		&models.Review{},
		&models.Itinerary{},
		&models.ItineraryItem{},
		&models.GrantApplication{},
		&models.GrantStatusEntry{},
		&models.GrantReportFile{},
		&models.Notification{},
	))
	return db
}

var seq int

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	seq++
	u := &models.User{
		Username: fmt.Sprintf("seed%d", seq),
		Email:    fmt.Sprintf("seed%d@example.com", seq),
		Role:     role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCluster(t *testing.T, db *gorm.DB, name string) *models.Cluster {
	t.Helper()
	c := &models.Cluster{Name: name, Category: "FOOD", District: "Kuching"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestReviewDuplicatePerUserPerCluster(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	u := seedUser(t, db, domain.RoleUser)
	c := seedCluster(t, db, "Top Spot Food Court")

	require.NoError(t, repo.Create(&models.Review{ClusterID: c.ID, UserID: u.ID, Rating: 5}))
	err := repo.Create(&models.Review{ClusterID: c.ID, UserID: u.ID, Rating: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Same user, different cluster is fine.
	c2 := seedCluster(t, db, "Kubah Ria")
	assert.NoError(t, repo.Create(&models.Review{ClusterID: c2.ID, UserID: u.ID, Rating: 4}))
}

func TestClusterAverageRating(t *testing.T) {
	db := newTestDB(t)
	clusterRepo := NewClusterRepository(db)
	reviewRepo := NewReviewRepository(db)
	c := seedCluster(t, db, "Sarawak Cultural Village")

	avg, count, err := clusterRepo.AverageRating(c.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	for _, rating := range []int{5, 4, 3} {
		u := seedUser(t, db, domain.RoleUser)
		require.NoError(t, reviewRepo.Create(&models.Review{ClusterID: c.ID, UserID: u.ID, Rating: rating}))
	}
	avg, count, err = clusterRepo.AverageRating(c.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)
	assert.Equal(t, int64(3), count)
}

func TestItineraryItemDuplicateDayCluster(t *testing.T) {
	db := newTestDB(t)
	repo := NewItineraryRepository(db)
	u := seedUser(t, db, domain.RoleUser)
	c := seedCluster(t, db, "Bako National Park")

	it := &models.Itinerary{UserID: u.ID, Title: "Weekend", Days: 2}
	require.NoError(t, repo.Create(it))

	require.NoError(t, repo.AddItem(&models.ItineraryItem{ItineraryID: it.ID, Day: 1, ClusterID: c.ID, Position: 1}))
	err := repo.AddItem(&models.ItineraryItem{ItineraryID: it.ID, Day: 1, ClusterID: c.ID, Position: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Same cluster on another day is a valid plan.
	assert.NoError(t, repo.AddItem(&models.ItineraryItem{ItineraryID: it.ID, Day: 2, ClusterID: c.ID, Position: 1}))

	got, err := repo.GetByID(it.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

func TestItineraryDeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewItineraryRepository(db)
	owner := seedUser(t, db, domain.RoleUser)
	stranger := seedUser(t, db, domain.RoleUser)

	it := &models.Itinerary{UserID: owner.ID, Title: "Solo trip", Days: 1}
	require.NoError(t, repo.Create(it))

	assert.ErrorIs(t, repo.Delete(it.ID, stranger.ID), domain.ErrNotFound)
	assert.NoError(t, repo.Delete(it.ID, owner.ID))
}

func TestGrantTransitionKeepsStatusAndHistoryTogether(t *testing.T) {
	db := newTestDB(t)
	repo := NewGrantRepository(db)
	u := seedUser(t, db, domain.RoleUser)

	app := &models.GrantApplication{
		Code:            "GA-202509-0001",
		ApplicantID:     u.ID,
		Title:           "Signage",
		AmountRequested: 1000,
		Status:          domain.GrantStatusPending,
		SubmittedAt:     time.Now(),
	}
	require.NoError(t, repo.CreateWithHistory(app, &models.GrantStatusEntry{Status: domain.GrantStatusPending}))

	app.Status = domain.GrantStatusConditionalOffer
	require.NoError(t, repo.SaveTransition(app, &models.GrantStatusEntry{Status: domain.GrantStatusConditionalOffer}))

	got, err := repo.GetByID(app.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, got.Status, got.History[1].Status)
}

func TestGrantCodeUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewGrantRepository(db)
	u := seedUser(t, db, domain.RoleUser)

	mk := func(code string) error {
		return repo.CreateWithHistory(&models.GrantApplication{
			Code:            code,
			ApplicantID:     u.ID,
			Title:           "x",
			AmountRequested: 1,
			Status:          domain.GrantStatusPending,
			SubmittedAt:     time.Now(),
		}, &models.GrantStatusEntry{Status: domain.GrantStatusPending})
	}
	require.NoError(t, mk("GA-202509-7777"))
	assert.Error(t, mk("GA-202509-7777"))

	// The failed insert rolled back its history entry too.
	var n int64
	db.Model(&models.GrantStatusEntry{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestNotificationListCandidates(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	uid := uint(5)

	require.NoError(t, repo.Create(&models.Notification{Audience: domain.AudienceUser, UserID: &uid, Type: "T", Message: "mine"}))
	require.NoError(t, repo.Create(&models.Notification{Audience: domain.AudienceAdmins, Type: "T", Message: "staff"}))
	require.NoError(t, repo.Create(&models.Notification{Audience: domain.AudienceGrantAdmins, Type: "T", Message: "queue"}))
	require.NoError(t, repo.Create(&models.Notification{Audience: domain.AudienceGlobalBanner, Type: "T", Message: "banner"}))

	list, err := repo.ListCandidatesFor(5, domain.RoleUser, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2) // own row + banner

	list, err = repo.ListCandidatesFor(1, domain.RoleEditor, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2) // admins + banner

	list, err = repo.ListCandidatesFor(1, domain.RoleAdmin, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3) // admins + grant_admins + banner
}

func TestUserRepoNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	_, err := repo.GetByID(123)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByEmail("ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
