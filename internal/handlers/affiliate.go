// ===============================
// internal/handlers/affiliate.go - Referral links and leads
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	service *services.AffiliateService
}

func NewAffiliateHandler(service *services.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{service: service}
}

// Summary creates the caller's code on first use
func (h *AffiliateHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load affiliate summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CaptureLead is called by the public landing page before the app is
// installed, so it carries no token
func (h *AffiliateHandler) CaptureLead(c *gin.Context) {
	var req models.CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ref and email are required"})
		return
	}

	leadKey, created, err := h.service.CaptureLead(c.Request.Context(), req.Ref, req.Email)
	if err != nil {
		respondError(c, err, "Failed to record lead")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"leadKey": leadKey, "created": created})
}
