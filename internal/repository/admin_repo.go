package repository

import (
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"

	"gorm.io/gorm"
)

// DashboardStats feeds the staff analytics dashboard.
type DashboardStats struct {
	TotalUsers          int64            `json:"total_users"`
	TotalPlayers        int64            `json:"total_players"`
	TotalClusters       int64            `json:"total_clusters"`
	TotalEvents         int64            `json:"total_events"`
	TotalReviews        int64            `json:"total_reviews"`
	TotalApplications   int64            `json:"total_applications"`
	PendingApplications int64            `json:"pending_applications"`
	ApprovedCents       int64            `json:"approved_cents"`
	DisbursedCents      int64            `json:"disbursed_cents"`
	ClustersByCategory  map[string]int64 `json:"clusters_by_category"`
	GrantsByStatus      map[string]int64 `json:"grants_by_status"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).Where("role = ?", domain.RolePlayer).Count(&s.TotalPlayers)
	r.db.Model(&models.Cluster{}).Count(&s.TotalClusters)
	r.db.Model(&models.Event{}).Count(&s.TotalEvents)
	r.db.Model(&models.Review{}).Count(&s.TotalReviews)
	r.db.Model(&models.GrantApplication{}).Count(&s.TotalApplications)
	r.db.Model(&models.GrantApplication{}).Where("status = ?", domain.GrantStatusPending).Count(&s.PendingApplications)

	var approved struct{ Total int64 }
	r.db.Model(&models.GrantApplication{}).Select("COALESCE(SUM(amount_approved), 0) as total").Scan(&approved)
	s.ApprovedCents = approved.Total

	var disbursed struct{ Total int64 }
	r.db.Model(&models.GrantApplication{}).
		Select("COALESCE(SUM(initial_disbursement_amount), 0) + COALESCE(SUM(final_disbursement_amount), 0) as total").
		Scan(&disbursed)
	s.DisbursedCents = disbursed.Total

	s.ClustersByCategory, _ = r.countGrouped(&models.Cluster{}, "category")
	s.GrantsByStatus, _ = r.countGrouped(&models.GrantApplication{}, "status")
	return &s, nil
}

func (r *AdminRepository) countGrouped(model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Grp   string
		Count int64
	}
	err := r.db.Model(model).
		Select(column + " as grp, COUNT(*) as count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Grp] = row.Count
	}
	return out, nil
}

// ListUsers returns users with search, role filter, and pagination.
func (r *AdminRepository) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

// UserSignupsByDay returns daily signup counts for the last N days.
func (r *AdminRepository) UserSignupsByDay(days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

// ApplicationsByDay returns daily grant submission counts for the last N days.
func (r *AdminRepository) ApplicationsByDay(days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.Model(&models.GrantApplication{}).
		Select("DATE(submitted_at) as date, COUNT(*) as count").
		Where("submitted_at >= ?", since).
		Group("DATE(submitted_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}
