// ===============================
// internal/handlers/profile.go - Profile, plan and photo
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 5 * 1024 * 1024

var photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type ProfileHandler struct {
	profiles *services.ProfileService
	rewards  *services.RewardsService
}

func NewProfileHandler(profiles *services.ProfileService, rewards *services.RewardsService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, rewards: rewards}
}

// GetMe returns the caller's profile, creating it on first sight and
// fixing a lapsed premium plan on the way
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.profiles.EnsureProfile(ctx, userID, c.GetString("userEmail"), ""); err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	profile, err := h.rewards.EnsurePremiumConsistency(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	label, err := h.rewards.VipDaysRemaining(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"vipRemaining": label,
		"premiumPrice": models.PremiumMonthlyPrice,
	})
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ChangePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan is required"})
		return
	}

	profile, err := h.profiles.SetPlan(c.Request.Context(), userID, req.Plan)
	if err != nil {
		respondError(c, err, "Failed to change plan")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.profiles.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if !hasExtension(header.Filename, photoExtensions) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type"})
		return
	}
	if header.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 5MB)"})
		return
	}

	url, err := h.profiles.UploadPhoto(c.Request.Context(), userID, file)
	if err != nil {
		respondError(c, err, "Failed to upload photo")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
