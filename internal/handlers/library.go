// ===============================
// internal/handlers/library.go - Playlist and Continue Watching
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	service *services.LibraryService
}

func NewLibraryHandler(service *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: service}
}

func (h *LibraryHandler) GetPlaylist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.service.GetPlaylist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load playlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *LibraryHandler) TogglePlaylist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.PlaylistToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Drama ID is required"})
		return
	}

	saved, err := h.service.TogglePlaylist(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to update playlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"dramaId": req.DramaID, "saved": saved})
}

func (h *LibraryHandler) RemoveFromPlaylist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.RemoveFromPlaylist(c.Request.Context(), userID, c.Param("dramaId")); err != nil {
		respondError(c, err, "Failed to update playlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from playlist"})
}

// OpenSaved tells the app whether a saved id is a community series or an
// editorial drama
func (h *LibraryHandler) OpenSaved(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	target, err := h.service.OpenSaved(c.Request.Context(), userID, c.Param("dramaId"))
	if err != nil {
		respondError(c, err, "Failed to open saved item")
		return
	}

	c.JSON(http.StatusOK, target)
}

func (h *LibraryHandler) GetContinue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.service.GetContinue(c.Request.Context(), userID, parseLimit(c, "take", 0, 100))
	if err != nil {
		respondError(c, err, "Failed to load continue watching")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *LibraryHandler) UpsertContinue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var item models.ContinueItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.UpsertContinue(c.Request.Context(), userID, &item); err != nil {
		respondError(c, err, "Failed to save progress")
		return
	}

	c.JSON(http.StatusOK, item)
}
