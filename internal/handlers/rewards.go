// ===============================
// internal/handlers/rewards.go - Check-in, missions and VIP shop
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

type RewardsHandler struct {
	service *services.RewardsService
}

func NewRewardsHandler(service *services.RewardsService) *RewardsHandler {
	return &RewardsHandler{service: service}
}

// Overview is everything the rewards screen shows. Opening it also checks
// in for the day and credits approved manual missions.
func (h *RewardsHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load rewards")
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *RewardsHandler) Checkin(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.TryDailyCheckin(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to check in")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RewardsHandler) CheckinView(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.service.CheckinView(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load check-in")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *RewardsHandler) Missions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	missions, err := h.service.Missions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load missions")
		return
	}
	if missions == nil {
		missions = []models.MissionView{}
	}

	c.JSON(http.StatusOK, gin.H{"missions": missions, "total": len(missions)})
}

func (h *RewardsHandler) CompleteMission(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	coins, err := h.service.CompleteMission(c.Request.Context(), userID, c.Param("missionId"))
	if err != nil {
		respondError(c, err, "Failed to complete mission")
		return
	}

	c.JSON(http.StatusOK, gin.H{"missionId": c.Param("missionId"), "coins": coins})
}

func (h *RewardsHandler) SubmitMission(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is required"})
		return
	}

	if err := h.service.SubmitManualMission(c.Request.Context(), userID, c.Param("missionId"), req.Input); err != nil {
		respondError(c, err, "Failed to submit mission")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"missionId": c.Param("missionId"), "status": models.ManualPending})
}

func (h *RewardsHandler) Shop(c *gin.Context) {
	items, err := h.service.Shop(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load shop")
		return
	}
	if items == nil {
		items = []models.RewardShopItem{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *RewardsHandler) BuyVip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	profile, err := h.service.BuyVip(ctx, userID, c.Param("itemId"))
	if err != nil {
		respondError(c, err, "Failed to buy VIP")
		return
	}
	label, err := h.service.VipDaysRemaining(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to buy VIP")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "vipRemaining": label})
}

// ===============================
// ADMIN
// ===============================

func (h *RewardsHandler) ReviewMission(c *gin.Context) {
	var req models.ReviewMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, missionID := c.Param("userId"), c.Param("missionId")
	if err := h.service.ReviewManualMission(c.Request.Context(), userID, missionID, req.Approve); err != nil {
		respondError(c, err, "Failed to review mission")
		return
	}

	status := models.ManualRejected
	if req.Approve {
		status = models.ManualApproved
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "missionId": missionID, "status": status})
}

func (h *RewardsHandler) SeedDefaults(c *gin.Context) {
	if err := h.service.EnsureCatalogDefaults(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to seed rewards")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reward defaults ensured"})
}
