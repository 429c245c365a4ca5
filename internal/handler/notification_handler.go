package handler

import (
	"net/http"
	"strconv"
	"time"

	"jelajah/internal/middleware"
	"jelajah/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
}

func NewNotificationHandler(notifSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// List returns the notifications visible to the caller, computed from
// audience, role, and cleared state.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.notifSvc.VisibleTo(userID, role, limit, offset)
	if err != nil {
		respondError(c, "list notifications", err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, n := range list {
		out = append(out, gin.H{
			"id":             n.ID,
			"audience":       n.Audience,
			"type":           n.Type,
			"message":        n.Message,
			"application_id": n.ApplicationID,
			"expires_at":     n.ExpiresAt,
			"created_at":     n.CreatedAt,
			"read":           n.ReadByUser(userID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.notifSvc.MarkRead(userID, role, uint(id)); err != nil {
		respondError(c, "mark notification read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.notifSvc.Clear(userID, role, uint(id)); err != nil {
		respondError(c, "clear notification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Broadcast inserts one personally addressed notification per account.
// The service re-checks the caller's role server-side.
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	count, err := h.notifSvc.BroadcastToAllUsers(userID, req.Message)
	if err != nil {
		respondError(c, "broadcast", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipients": count})
}

// SetBanner replaces the site-wide announcement banner.
func (h *NotificationHandler) SetBanner(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Message   string     `json:"message" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	banner, err := h.notifSvc.SetBanner(userID, req.Message, req.ExpiresAt)
	if err != nil {
		respondError(c, "set banner", err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}
