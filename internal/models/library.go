// ===============================
// internal/models/library.go - Playlist and Continue Watching
// ===============================

package models

// PlaylistItem is stored at users/{uid}/playlist/{dramaId}
type PlaylistItem struct {
	DramaID     string `json:"dramaId"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	CoverURL    string `json:"coverUrl"`
	AddedAtUnix int64  `json:"addedAtUnix"`
}

// ContinueItem is stored at users/{uid}/continue/{dramaId}
type ContinueItem struct {
	DramaID         string `json:"dramaId"`
	DramaTitle      string `json:"dramaTitle"`
	DramaCoverURL   string `json:"dramaCoverUrl"`
	EpisodeID       string `json:"episodeId"`
	EpisodeNumber   int    `json:"episodeNumber"`
	EpisodeTitle    string `json:"episodeTitle"`
	VideoURL        string `json:"videoUrl"`
	PositionSeconds int64  `json:"positionSeconds"`
	DurationSeconds int64  `json:"durationSeconds"`
	UpdatedAtUnix   int64  `json:"updatedAtUnix"`
}

// PlaylistToggleRequest describes the drama being saved
type PlaylistToggleRequest struct {
	DramaID  string `json:"dramaId" binding:"required"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CoverURL string `json:"coverUrl"`
}

// SavedTarget tells the client where a saved id leads
type SavedTarget struct {
	Kind     string            `json:"kind"` // "community" or "drama"
	Drama    *DramaSeries      `json:"drama,omitempty"`
	Series   *CommunitySeries  `json:"series,omitempty"`
	Episodes []FeedEpisodeItem `json:"episodes,omitempty"`
}
