// ===============================
// internal/models/community.go - Creator Series Models
// ===============================

package models

// Feed tabs
const (
	FeedTabRecommended = "recommended"
	FeedTabPopular     = "popular"
	FeedTabCommunity   = "community"
	FeedTabRandom      = "random"
)

// CommunitySeries is stored at community/series/{id}. Episodes live under
// the same node and are read separately.
type CommunitySeries struct {
	ID            string   `json:"id"`
	CreatorUserID string   `json:"creatorUserId"`
	CreatorName   string   `json:"creatorName"`
	CreatorIsVip  bool     `json:"creatorIsVip"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	CoverURL      string   `json:"coverUrl"`
	PosterURL     string   `json:"posterUrl"`
	IsPublished   bool     `json:"isPublished"`
	Tags          []string `json:"tags"`
	CreatedAtUnix int64    `json:"createdAtUnix"`
	UpdatedAtUnix int64    `json:"updatedAtUnix"`
}

// CommunityEpisode is stored at community/series/{seriesId}/episodes/{id}
type CommunityEpisode struct {
	ID              string `json:"id"`
	Number          int    `json:"number"`
	Title           string `json:"title"`
	VideoURL        string `json:"videoUrl"`
	DurationSeconds int    `json:"durationSeconds"`
	CreatedAtUnix   int64  `json:"createdAtUnix"`
}

// SeriesMetrics is stored at community/metrics/series/{id}
type SeriesMetrics struct {
	Likes          float64 `json:"likes"`
	Shares         float64 `json:"shares"`
	MinutesWatched float64 `json:"minutesWatched"`
	UpdatedAtUnix  int64   `json:"updatedAtUnix"`
}

// RoyaltyConfig is stored at community/config/royalty, values in cents
type RoyaltyConfig struct {
	PerLike          float64 `json:"perLike"`
	PerShare         float64 `json:"perShare"`
	PerMinuteWatched float64 `json:"perMinuteWatched"`
}

func DefaultRoyaltyConfig() RoyaltyConfig {
	return RoyaltyConfig{PerLike: 0.001, PerShare: 0.003, PerMinuteWatched: 0.01}
}

// CreatorEarnings is stored at community/earnings/creators/{uid}
type CreatorEarnings struct {
	CentsTotal    float64 `json:"centsTotal"`
	UpdatedAtUnix int64   `json:"updatedAtUnix"`
}

// WatchProgress is stored at community/watch/{uid}/{seriesId}/{episodeId}
type WatchProgress struct {
	Seconds       int64 `json:"seconds"`
	UpdatedAtUnix int64 `json:"updatedAtUnix"`
}

// CommunityFeedItem is a published series with rounded counters
type CommunityFeedItem struct {
	Series         CommunitySeries `json:"series"`
	Likes          int64           `json:"likes"`
	Shares         int64           `json:"shares"`
	MinutesWatched int64           `json:"minutesWatched"`
	Liked          bool            `json:"liked"`
}

// FeedEpisodeItem is one vertical-player entry
type FeedEpisodeItem struct {
	DramaID       string `json:"dramaId"`
	DramaTitle    string `json:"dramaTitle"`
	DramaSubtitle string `json:"dramaSubtitle"`
	CoverURL      string `json:"coverUrl"`
	CreatorUserID string `json:"creatorUserId"`
	CreatorName   string `json:"creatorName"`
	EpisodeID     string `json:"episodeId"`
	EpisodeNumber int    `json:"episodeNumber"`
	EpisodeTitle  string `json:"episodeTitle"`
	VideoURL      string `json:"videoUrl"`
	IsVip         bool   `json:"isVip"`
}

// CreatorSeriesItem lists a creator's own series
type CreatorSeriesItem struct {
	Series       CommunitySeries `json:"series"`
	EpisodeCount int             `json:"episodeCount"`
}

// CreatorDashboard sums a creator's counters
type CreatorDashboard struct {
	SeriesCount    int     `json:"seriesCount"`
	Likes          int64   `json:"likes"`
	Shares         int64   `json:"shares"`
	MinutesWatched int64   `json:"minutesWatched"`
	CentsTotal     float64 `json:"centsTotal"`
	RevenueReais   float64 `json:"revenueReais"`
}

// CreateSeriesRequest starts a new creator series
type CreateSeriesRequest struct {
	Title    string   `json:"title" binding:"required"`
	Subtitle string   `json:"subtitle"`
	CoverURL string   `json:"coverUrl"`
	Tags     []string `json:"tags"`
}

// UpdateSeriesRequest edits series metadata
type UpdateSeriesRequest struct {
	Title       *string  `json:"title"`
	Subtitle    *string  `json:"subtitle"`
	CoverURL    *string  `json:"coverUrl"`
	PosterURL   *string  `json:"posterUrl"`
	IsPublished *bool    `json:"isPublished"`
	Tags        []string `json:"tags"`
}

// EpisodeRequest adds or edits a creator episode
type EpisodeRequest struct {
	Number          int    `json:"number"`
	Title           string `json:"title"`
	VideoURL        string `json:"videoUrl"`
	DurationSeconds int    `json:"durationSeconds"`
}

// WatchRequest reports total seconds watched of one episode
type WatchRequest struct {
	EpisodeID    string `json:"episodeId" binding:"required"`
	TotalSeconds int64  `json:"totalSeconds"`
}
