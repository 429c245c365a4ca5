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

type MeHandler struct {
	userRepo *repository.UserRepository
	authSvc  *service.AuthService
	cloud    cloudinary.Client
}

func NewMeHandler(userRepo *repository.UserRepository, authSvc *service.AuthService, cloud cloudinary.Client) *MeHandler {
	return &MeHandler{userRepo: userRepo, authSvc: authSvc, cloud: cloud}
}

func (h *MeHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondError(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *MeHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondError(c, "update profile", err)
		return
	}
	var req struct {
		DisplayName string `json:"display_name"`
		District    string `json:"district"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DisplayName != "" {
		u.DisplayName = req.DisplayName
	}
	if req.District != "" {
		u.District = req.District
	}
	if err := h.userRepo.Update(u); err != nil {
		respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *MeHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authSvc.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}
		respondError(c, "change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func (h *MeHandler) UploadAvatar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondError(c, "upload avatar", err)
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

	folder := "jelajah/avatars/" + strconv.FormatUint(uint64(u.ID), 10)
	publicID := "avatar_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	u.AvatarURL = url
	if err := h.userRepo.Update(u); err != nil {
		respondError(c, "upload avatar", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
