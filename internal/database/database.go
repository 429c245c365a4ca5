package database

import (
	"jelajah/config"
	"jelajah/internal/domain"
	"jelajah/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

// SeedAdmin creates the default board administrator if no ADMIN exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		zap.S().Errorw("seed admin: hash failed", "error", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@jelajah.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		DisplayName:  "Board Administrator",
	}
	if err := db.Create(admin).Error; err != nil {
		zap.S().Errorw("seed admin: create failed", "error", err)
		return
	}
	zap.S().Infow("seeded default admin account", "email", admin.Email)
}
