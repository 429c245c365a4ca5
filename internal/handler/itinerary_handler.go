package handler

import (
	"net/http"
	"strconv"

	"jelajah/internal/middleware"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/service"
	"jelajah/internal/ws"

	"github.com/gin-gonic/gin"
)

type ItineraryHandler struct {
	repo       *repository.ItineraryRepository
	plannerSvc *service.PlannerService
	feed       *ws.Changefeed
}

func NewItineraryHandler(repo *repository.ItineraryRepository, plannerSvc *service.PlannerService, feed *ws.Changefeed) *ItineraryHandler {
	return &ItineraryHandler{repo: repo, plannerSvc: plannerSvc, feed: feed}
}

func (h *ItineraryHandler) publish() {
	if h.feed != nil {
		h.feed.TableChanged("itineraries")
	}
}

func (h *ItineraryHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.repo.ListByUser(userID)
	if err != nil {
		respondError(c, "list itineraries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": list})
}

func (h *ItineraryHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	it, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "get itinerary", err)
		return
	}
	if it.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "get itinerary: not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *ItineraryHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title string `json:"title" binding:"required"`
		Days  int    `json:"days" binding:"required,min=1,max=14"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it := &models.Itinerary{
		UserID: userID,
		Title:  req.Title,
		Days:   req.Days,
		Notes:  req.Notes,
	}
	if err := h.repo.Create(it); err != nil {
		respondError(c, "create itinerary", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, it)
}

func (h *ItineraryHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.Delete(uint(id), userID); err != nil {
		respondError(c, "delete itinerary", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AddItem appends a cluster visit; duplicate (day, cluster) pairs are
// rejected with a conflict.
func (h *ItineraryHandler) AddItem(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	it, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "add itinerary item", err)
		return
	}
	if it.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "add itinerary item: not found"})
		return
	}
	var req struct {
		Day       int    `json:"day" binding:"required,min=1"`
		ClusterID uint   `json:"cluster_id" binding:"required"`
		Position  int    `json:"position"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Day > it.Days {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day exceeds itinerary length"})
		return
	}
	item := &models.ItineraryItem{
		ItineraryID: it.ID,
		Day:         req.Day,
		ClusterID:   req.ClusterID,
		Position:    req.Position,
		Note:        req.Note,
	}
	if err := h.repo.AddItem(item); err != nil {
		respondError(c, "add itinerary item", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, item)
}

func (h *ItineraryHandler) RemoveItem(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	itemID, _ := strconv.ParseUint(c.Param("item_id"), 10, 64)
	it, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "remove itinerary item", err)
		return
	}
	if it.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "remove itinerary item: not found"})
		return
	}
	if err := h.repo.RemoveItem(it.ID, uint(itemID)); err != nil {
		respondError(c, "remove itinerary item", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Suggest asks the completion service for a draft plan. Failures map to
// 502; the visitor can always build the itinerary by hand instead.
func (h *ItineraryHandler) Suggest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title     string   `json:"title"`
		Days      int      `json:"days" binding:"required,min=1,max=14"`
		Interests []string `json:"interests"`
		District  string   `json:"district"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := h.plannerSvc.SuggestItinerary(c.Request.Context(), userID, service.PlanInput{
		Title:     req.Title,
		Days:      req.Days,
		Interests: req.Interests,
		District:  req.District,
	})
	if err != nil {
		respondError(c, "suggest itinerary", err)
		return
	}
	c.JSON(http.StatusCreated, it)
}
