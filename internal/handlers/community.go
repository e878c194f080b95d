// ===============================
// internal/handlers/community.go - Creator series, feeds and interactions
// ===============================

package handlers

import (
	"net/http"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	maxCoverBytes = 10 * 1024 * 1024
	maxVideoBytes = 500 * 1024 * 1024
)

var coverExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type CommunityHandler struct {
	service *services.CommunityService
}

func NewCommunityHandler(service *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: service}
}

// ===============================
// FEEDS
// ===============================

func (h *CommunityHandler) Feed(c *gin.Context) {
	tab := c.DefaultQuery("tab", models.FeedTabRecommended)
	take := parseLimit(c, "take", 60, 200)

	items, err := h.service.Feed(c.Request.Context(), c.GetString("userID"), tab, take)
	if err != nil {
		respondError(c, err, "Failed to load feed")
		return
	}
	if items == nil {
		items = []models.CommunityFeedItem{}
	}

	c.JSON(http.StatusOK, gin.H{"tab": tab, "items": items, "total": len(items)})
}

// EpisodeFeed is the vertical player across random series
func (h *CommunityHandler) EpisodeFeed(c *gin.Context) {
	take := parseLimit(c, "take", 50, 200)

	episodes, err := h.service.RandomEpisodeFeed(c.Request.Context(), take)
	if err != nil {
		respondError(c, err, "Failed to load episodes")
		return
	}
	if episodes == nil {
		episodes = []models.FeedEpisodeItem{}
	}

	c.JSON(http.StatusOK, gin.H{"episodes": episodes, "total": len(episodes)})
}

func (h *CommunityHandler) GetSeries(c *gin.Context) {
	series, err := h.service.GetSeries(c.Request.Context(), c.GetString("userID"), c.Param("seriesId"))
	if err != nil {
		respondError(c, err, "Failed to load series")
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *CommunityHandler) GetSeriesEpisodes(c *gin.Context) {
	episodes, err := h.service.EpisodeFeedFromSeries(c.Request.Context(), c.GetString("userID"), c.Param("seriesId"))
	if err != nil {
		respondError(c, err, "Failed to load episodes")
		return
	}
	if episodes == nil {
		episodes = []models.FeedEpisodeItem{}
	}

	c.JSON(http.StatusOK, gin.H{"episodes": episodes, "total": len(episodes)})
}

// ===============================
// CREATOR
// ===============================

func (h *CommunityHandler) MySeries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	series, err := h.service.CreatorSeries(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load your series")
		return
	}
	if series == nil {
		series = []models.CreatorSeriesItem{}
	}

	c.JSON(http.StatusOK, gin.H{"series": series, "total": len(series)})
}

func (h *CommunityHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.service.CreatorDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *CommunityHandler) CreateSeries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	series, err := h.service.CreateSeries(c.Request.Context(), userID, c.GetString("userEmail"), &req)
	if err != nil {
		respondError(c, err, "Failed to create series")
		return
	}

	c.JSON(http.StatusCreated, series)
}

func (h *CommunityHandler) UpdateSeries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	series, err := h.service.UpdateSeries(c.Request.Context(), userID, c.Param("seriesId"), &req)
	if err != nil {
		respondError(c, err, "Failed to update series")
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *CommunityHandler) AddEpisode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.EpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	episode, err := h.service.AddEpisode(c.Request.Context(), userID, c.Param("seriesId"), &req)
	if err != nil {
		respondError(c, err, "Failed to add episode")
		return
	}

	c.JSON(http.StatusCreated, episode)
}

func (h *CommunityHandler) UpdateEpisode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.EpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	episode, err := h.service.UpdateEpisode(c.Request.Context(), userID, c.Param("seriesId"), c.Param("episodeId"), &req)
	if err != nil {
		respondError(c, err, "Failed to update episode")
		return
	}

	c.JSON(http.StatusOK, episode)
}

func (h *CommunityHandler) RemoveEpisode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.RemoveEpisode(c.Request.Context(), userID, c.Param("seriesId"), c.Param("episodeId")); err != nil {
		respondError(c, err, "Failed to remove episode")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Episode removed"})
}

func (h *CommunityHandler) UploadCover(c *gin.Context) {
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

	if !hasExtension(header.Filename, coverExtensions) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cover must be a .jpg or .png"})
		return
	}
	if header.Size > maxCoverBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cover too large (max 10MB)"})
		return
	}

	url, err := h.service.UploadCover(c.Request.Context(), userID, c.Param("seriesId"), header.Filename, file)
	if err != nil {
		respondError(c, err, "Failed to upload cover")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// UploadEpisodeVideo accepts only .mp4. The episode is added afterwards
// with the returned URL and id.
func (h *CommunityHandler) UploadEpisodeVideo(c *gin.Context) {
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

	if !hasExtension(header.Filename, map[string]bool{".mp4": true}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video must be an .mp4"})
		return
	}
	if header.Size > maxVideoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video too large (max 500MB)"})
		return
	}

	url, episodeID, err := h.service.UploadEpisodeVideo(c.Request.Context(), userID, c.Param("seriesId"), c.PostForm("episodeId"), file)
	if err != nil {
		respondError(c, err, "Failed to upload video")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "episodeId": episodeID})
}

// ===============================
// INTERACTIONS
// ===============================

func (h *CommunityHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), userID, c.Param("seriesId"))
	if err != nil {
		respondError(c, err, "Failed to toggle like")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *CommunityHandler) Share(c *gin.Context) {
	if err := h.service.AddShare(c.Request.Context(), c.Param("seriesId")); err != nil {
		respondError(c, err, "Failed to record share")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share recorded"})
}

func (h *CommunityHandler) Watch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID is required"})
		return
	}

	if err := h.service.UpsertWatchSeconds(c.Request.Context(), userID, c.Param("seriesId"), req.EpisodeID, req.TotalSeconds); err != nil {
		respondError(c, err, "Failed to record watch time")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Watch time recorded"})
}
