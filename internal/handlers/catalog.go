// ===============================
// internal/handlers/catalog.go - Editorial dramas
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service *services.CatalogService
}

func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Discover serves the home screen: featured, top 10, categories and feed
func (h *CatalogHandler) Discover(c *gin.Context) {
	page, err := h.service.Discover(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to load dramas")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) SeriesList(c *gin.Context) {
	dramas, err := h.service.SeriesList(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to load dramas")
		return
	}
	if dramas == nil {
		dramas = []models.DramaSeries{}
	}

	c.JSON(http.StatusOK, gin.H{"dramas": dramas, "total": len(dramas)})
}

// GetDrama works without auth, VIP episodes then come back locked
func (h *CatalogHandler) GetDrama(c *gin.Context) {
	details, err := h.service.Details(c.Request.Context(), c.GetString("userID"), c.Param("dramaId"))
	if err != nil {
		respondError(c, err, "Failed to load drama")
		return
	}

	c.JSON(http.StatusOK, details)
}

// PlayEpisode answers 402 when the drama needs an active premium plan
func (h *CatalogHandler) PlayEpisode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	episode, err := h.service.PlayEpisode(c.Request.Context(), userID, c.Param("dramaId"), c.Param("episodeId"))
	if err != nil {
		respondError(c, err, "Failed to load episode")
		return
	}

	c.JSON(http.StatusOK, episode)
}

// ===============================
// ADMIN
// ===============================

func (h *CatalogHandler) CreateDrama(c *gin.Context) {
	h.upsertDrama(c, "", http.StatusCreated)
}

func (h *CatalogHandler) UpdateDrama(c *gin.Context) {
	h.upsertDrama(c, c.Param("dramaId"), http.StatusOK)
}

func (h *CatalogHandler) upsertDrama(c *gin.Context, dramaID string, status int) {
	var req models.UpsertDramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	drama, err := h.service.UpsertDrama(c.Request.Context(), dramaID, &req)
	if err != nil {
		respondError(c, err, "Failed to save drama")
		return
	}

	c.JSON(status, drama)
}

func (h *CatalogHandler) CreateEpisode(c *gin.Context) {
	h.upsertEpisode(c, "", http.StatusCreated)
}

func (h *CatalogHandler) UpdateEpisode(c *gin.Context) {
	h.upsertEpisode(c, c.Param("episodeId"), http.StatusOK)
}

func (h *CatalogHandler) upsertEpisode(c *gin.Context, episodeID string, status int) {
	var req models.UpsertDramaEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video URL is required"})
		return
	}

	episode, err := h.service.UpsertEpisode(c.Request.Context(), c.Param("dramaId"), episodeID, &req)
	if err != nil {
		respondError(c, err, "Failed to save episode")
		return
	}

	c.JSON(status, episode)
}

func (h *CatalogHandler) DeleteDrama(c *gin.Context) {
	if err := h.service.DeleteDrama(c.Request.Context(), c.Param("dramaId")); err != nil {
		respondError(c, err, "Failed to delete drama")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Drama deleted"})
}
