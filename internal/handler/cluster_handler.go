package handler

import (
	"net/http"
	"strconv"
	"strings"

	"jelajah/internal/domain"
	"jelajah/internal/middleware"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/service"
	"jelajah/internal/ws"
	"jelajah/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClusterHandler struct {
	repo       *repository.ClusterRepository
	plannerSvc *service.PlannerService
	cloud      cloudinary.Client
	feed       *ws.Changefeed
}

func NewClusterHandler(repo *repository.ClusterRepository, plannerSvc *service.PlannerService, cloud cloudinary.Client, feed *ws.Changefeed) *ClusterHandler {
	return &ClusterHandler{repo: repo, plannerSvc: plannerSvc, cloud: cloud, feed: feed}
}

func (h *ClusterHandler) publish() {
	if h.feed != nil {
		h.feed.TableChanged("clusters")
	}
}

// List is public: visitors browse the catalog without an account.
func (h *ClusterHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, total, err := h.repo.List(c.Query("category"), c.Query("district"), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, "list clusters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": list, "total": total})
}

func (h *ClusterHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cluster, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "get cluster", err)
		return
	}
	avg, count, _ := h.repo.AverageRating(cluster.ID)
	c.JSON(http.StatusOK, gin.H{"cluster": cluster, "average_rating": avg, "review_count": count})
}

type clusterRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	District    string  `json:"district"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Create is allowed for elevated roles and tourism players; a player's
// cluster is attributed to them as owner.
func (h *ClusterHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	var req clusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cluster := &models.Cluster{
		Name:        req.Name,
		Category:    strings.ToUpper(req.Category),
		District:    req.District,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if role == domain.RolePlayer {
		cluster.OwnerID = &userID
	}
	if err := h.repo.Create(cluster); err != nil {
		respondError(c, "create cluster", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, cluster)
}

func (h *ClusterHandler) canManage(c *gin.Context, cluster *models.Cluster) bool {
	role := middleware.GetRole(c)
	if domain.IsElevated(role) {
		return true
	}
	userID := middleware.GetUserID(c)
	return cluster.OwnerID != nil && *cluster.OwnerID == userID
}

func (h *ClusterHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cluster, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "update cluster", err)
		return
	}
	if !h.canManage(c, cluster) {
		c.JSON(http.StatusForbidden, gin.H{"error": "update cluster not permitted"})
		return
	}
	var req clusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cluster.Name = req.Name
	cluster.Category = strings.ToUpper(req.Category)
	cluster.District = req.District
	cluster.Description = req.Description
	cluster.Latitude = req.Latitude
	cluster.Longitude = req.Longitude
	if err := h.repo.Update(cluster); err != nil {
		respondError(c, "update cluster", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, cluster)
}

// Delete removes the cluster row, then best-effort deletes its image.
// A failed image delete is logged and swallowed; the catalog row is
// already gone and that is the operation the user asked for.
func (h *ClusterHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cluster, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "delete cluster", err)
		return
	}
	if !h.canManage(c, cluster) {
		c.JSON(http.StatusForbidden, gin.H{"error": "delete cluster not permitted"})
		return
	}
	if err := h.repo.Delete(cluster.ID); err != nil {
		respondError(c, "delete cluster", err)
		return
	}
	if cluster.ImageURL != "" {
		if err := h.cloud.DeleteByURL(c.Request.Context(), cluster.ImageURL); err != nil {
			zap.S().Warnw("cluster image cleanup failed", "cluster_id", cluster.ID, "error", err)
		}
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadImage attaches an optimized Cloudinary image to the cluster.
func (h *ClusterHandler) UploadImage(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cluster, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, "upload cluster image", err)
		return
	}
	if !h.canManage(c, cluster) {
		c.JSON(http.StatusForbidden, gin.H{"error": "upload cluster image not permitted"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "jelajah/clusters/" + strconv.FormatUint(uint64(cluster.ID), 10)
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	cluster.ImageURL = url
	if err := h.repo.Update(cluster); err != nil {
		respondError(c, "upload cluster image", err)
		return
	}
	h.publish()
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ImportCSV bulk-loads clusters from the board's sheet. Elevated only
// (routed behind ElevatedRequired); bad rows fail the whole file.
func (h *ClusterHandler) ImportCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	clusters, err := service.ParseClustersCSV(f)
	if err != nil {
		respondError(c, "import clusters", err)
		return
	}
	if err := h.repo.CreateBatch(clusters); err != nil {
		respondError(c, "import clusters", err)
		return
	}
	h.publish()
	c.JSON(http.StatusCreated, gin.H{"imported": len(clusters)})
}

// GenerateDescription asks the completion service for listing copy.
func (h *ClusterHandler) GenerateDescription(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	text, err := h.plannerSvc.DescribeCluster(c.Request.Context(), userID, role, uint(id))
	if err != nil {
		respondError(c, "generate description", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}
