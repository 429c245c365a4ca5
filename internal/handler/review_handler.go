package handler

import (
	"net/http"
	"strconv"

	"jelajah/internal/middleware"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/ws"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	repo        *repository.ReviewRepository
	clusterRepo *repository.ClusterRepository
	feed        *ws.Changefeed
}

func NewReviewHandler(repo *repository.ReviewRepository, clusterRepo *repository.ClusterRepository, feed *ws.Changefeed) *ReviewHandler {
	return &ReviewHandler{repo: repo, clusterRepo: clusterRepo, feed: feed}
}

func (h *ReviewHandler) publish() {
	if h.feed != nil {
		h.feed.TableChanged("reviews")
	}
}

func (h *ReviewHandler) ListByCluster(c *gin.Context) {
	clusterID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByCluster(uint(clusterID), limit, offset)
	if err != nil {
		respondError(c, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// Create inserts a review; one per user per cluster.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	clusterID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.clusterRepo.GetByID(uint(clusterID)); err != nil {
		respondError(c, "create review", err)
		return
	}
	rev := &models.Review{
		ClusterID: uint(clusterID),
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.repo.Create(rev); err != nil {
		respondError(c, "create review", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, rev)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("review_id"), 10, 64)
	if err := h.repo.Delete(uint(id), userID); err != nil {
		respondError(c, "delete review", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
