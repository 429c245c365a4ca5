package handler

import (
	"net/http"
	"strconv"

	"jelajah/internal/domain"
	"jelajah/internal/middleware"
	"jelajah/internal/repository"
	"jelajah/internal/ws"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminRepo *repository.AdminRepository
	userRepo  *repository.UserRepository
	feed      *ws.Changefeed
}

func NewAdminHandler(adminRepo *repository.AdminRepository, userRepo *repository.UserRepository, feed *ws.Changefeed) *AdminHandler {
	return &AdminHandler{adminRepo: adminRepo, userRepo: userRepo, feed: feed}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		respondError(c, "dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	users, total, err := h.adminRepo.ListUsers(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		respondError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page})
}

var assignableRoles = map[string]bool{
	domain.RoleAdmin:  true,
	domain.RoleEditor: true,
	domain.RolePlayer: true,
	domain.RoleUser:   true,
}

// SetUserRole promotes or demotes an account. Admin only; an admin
// cannot demote themselves, so there is always at least one admin.
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	callerID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !assignableRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if uint(id) == callerID && req.Role != domain.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot demote your own account"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, "set user role", err)
		return
	}
	u.Role = req.Role
	if err := h.userRepo.Update(u); err != nil {
		respondError(c, "set user role", err)
		return
	}
	if h.feed != nil {
		h.feed.TableChanged("users")
	}
	c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) UserSignups(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	points, err := h.adminRepo.UserSignupsByDay(days)
	if err != nil {
		respondError(c, "user signups series", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *AdminHandler) ApplicationVolume(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	points, err := h.adminRepo.ApplicationsByDay(days)
	if err != nil {
		respondError(c, "application volume series", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}
