package service

import (
	"fmt"
	"testing"

	"jelajah/internal/models"

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

var userSeq int

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Username: fmt.Sprintf("user%d", userSeq),
		Email:    fmt.Sprintf("user%d@example.com", userSeq),
		Role:     role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
