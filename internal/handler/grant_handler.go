package handler

import (
	"net/http"
	"strconv"
	"strings"

	"jelajah/internal/middleware"
	"jelajah/internal/repository"
	"jelajah/internal/service"
	"jelajah/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GrantHandler struct {
	grantSvc *service.GrantService
	repo     *repository.GrantRepository
	cloud    cloudinary.Client
}

func NewGrantHandler(grantSvc *service.GrantService, repo *repository.GrantRepository, cloud cloudinary.Client) *GrantHandler {
	return &GrantHandler{grantSvc: grantSvc, repo: repo, cloud: cloud}
}

type submitGrantRequest struct {
	Title           string `json:"title" binding:"required"`
	Summary         string `json:"summary"`
	AmountRequested int64  `json:"amount_requested" binding:"required,gt=0"`
}

func (h *GrantHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req submitGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.grantSvc.Submit(userID, service.SubmitInput{
		Title:           req.Title,
		Summary:         req.Summary,
		AmountRequested: req.AmountRequested,
	})
	if err != nil {
		respondError(c, "submit application", err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *GrantHandler) Reapply(c *gin.Context) {
	userID := middleware.GetUserID(c)
	priorID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req submitGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.grantSvc.Reapply(userID, uint(priorID), service.SubmitInput{
		Title:           req.Title,
		Summary:         req.Summary,
		AmountRequested: req.AmountRequested,
	})
	if err != nil {
		respondError(c, "reapply", err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *GrantHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	app, err := h.grantSvc.Get(userID, uint(id))
	if err != nil {
		respondError(c, "get application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.repo.ListByApplicant(userID)
	if err != nil {
		respondError(c, "list applications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

// ListAll is the staff view; routed behind ElevatedRequired.
func (h *GrantHandler) ListAll(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, total, err := h.repo.List(status, limit, offset)
	if err != nil {
		respondError(c, "list applications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list, "total": total})
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

func (h *GrantHandler) Reject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req decisionRequest
	_ = c.ShouldBindJSON(&req)
	app, err := h.grantSvc.RejectPending(userID, uint(id), req.Notes)
	if err != nil {
		respondError(c, "reject application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) MakeConditionalOffer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.grantSvc.MakeConditionalOffer(userID, uint(id), req.AmountCents, req.Notes)
	if err != nil {
		respondError(c, "make conditional offer", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) AcceptOffer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	app, err := h.grantSvc.AcceptOffer(userID, uint(id))
	if err != nil {
		respondError(c, "accept offer", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) DeclineOffer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req decisionRequest
	_ = c.ShouldBindJSON(&req)
	app, err := h.grantSvc.DeclineOffer(userID, uint(id), req.Notes)
	if err != nil {
		respondError(c, "decline offer", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// SubmitReport uploads an early or final report document and advances
// the status machine. Stage comes from the route.
func (h *GrantHandler) SubmitReport(stage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
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

		folder := "jelajah/grants/" + strconv.FormatUint(id, 10)
		publicID := "report_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
		url, err := h.cloud.UploadDocument(c.Request.Context(), f, folder, publicID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "report upload failed"})
			return
		}

		app, err := h.submitByStage(stage, userID, uint(id), url, file.Filename)
		if err != nil {
			respondError(c, "submit report", err)
			return
		}
		c.JSON(http.StatusOK, app)
	}
}

func (h *GrantHandler) submitByStage(stage string, userID, appID uint, url, filename string) (interface{}, error) {
	if stage == "final" {
		return h.grantSvc.SubmitFinalReport(userID, appID, url, filename)
	}
	return h.grantSvc.SubmitEarlyReport(userID, appID, url, filename)
}

func (h *GrantHandler) ApproveEarlyReport(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.grantSvc.ApproveEarlyReport(userID, uint(id), req.AmountCents, req.Notes)
	if err != nil {
		respondError(c, "approve early report", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) RejectEarlyReport(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req decisionRequest
	_ = c.ShouldBindJSON(&req)
	app, err := h.grantSvc.RejectEarlyReport(userID, uint(id), req.Notes)
	if err != nil {
		respondError(c, "reject early report", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) RejectFinalReport(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req decisionRequest
	_ = c.ShouldBindJSON(&req)
	app, err := h.grantSvc.RejectFinalReport(userID, uint(id), req.Notes)
	if err != nil {
		respondError(c, "reject final report", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *GrantHandler) Complete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.grantSvc.Complete(userID, uint(id), req.AmountCents, req.Notes)
	if err != nil {
		respondError(c, "complete application", err)
		return
	}
	c.JSON(http.StatusOK, app)
}
