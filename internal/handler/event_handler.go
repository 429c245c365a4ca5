package handler

import (
	"net/http"
	"strconv"
	"time"

	"jelajah/internal/middleware"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/ws"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	repo *repository.EventRepository
	feed *ws.Changefeed
}

func NewEventHandler(repo *repository.EventRepository, feed *ws.Changefeed) *EventHandler {
	return &EventHandler{repo: repo, feed: feed}
}

func (h *EventHandler) publish() {
	if h.feed != nil {
		h.feed.TableChanged("events")
	}
}

func (h *EventHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	upcoming := c.DefaultQuery("upcoming", "false") == "true"
	list, total, err := h.repo.List(upcoming, limit, offset)
	if err != nil {
		respondError(c, "list events", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list, "total": total})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	e, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "get event", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type eventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	ClusterID   *uint      `json:"cluster_id"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		ClusterID:   req.ClusterID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   middleware.GetUserID(c),
	}
	if err := h.repo.Create(e); err != nil {
		respondError(c, "create event", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, e)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	e, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "update event", err)
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e.Title = req.Title
	e.Description = req.Description
	e.Venue = req.Venue
	e.ClusterID = req.ClusterID
	e.StartsAt = req.StartsAt
	e.EndsAt = req.EndsAt
	if err := h.repo.Update(e); err != nil {
		respondError(c, "update event", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, e)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if _, err := h.repo.GetByID(uint(id)); err != nil {
		respondError(c, "delete event", err)
		return
	}
	if err := h.repo.Delete(uint(id)); err != nil {
		respondError(c, "delete event", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
