// ===============================
// internal/models/drama.go - Editorial Drama Models
// ===============================

package models

import "strings"

// DramaSeries is stored at dramas/{id}
type DramaSeries struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	CoverURL      string   `json:"coverUrl"`
	PosterURL     string   `json:"posterUrl"`
	Categories    []string `json:"categories"`
	IsFeatured    bool     `json:"isFeatured"`
	IsVip         bool     `json:"isVip"`
	TopRank       int      `json:"topRank"`
	UpdatedAtUnix int64    `json:"updatedAtUnix"`
}

// HasCategory matches case-insensitively
func (d *DramaSeries) HasCategory(category string) bool {
	category = strings.TrimSpace(category)
	for _, c := range d.Categories {
		if strings.EqualFold(strings.TrimSpace(c), category) {
			return true
		}
	}
	return false
}

// Matches reports whether q is contained in the title or subtitle
func (d *DramaSeries) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Subtitle), q)
}

// DramaEpisode is stored at episodes/{dramaId}/{episodeId}
type DramaEpisode struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	ThumbURL    string `json:"thumbUrl"`
	DurationSec int    `json:"durationSec"`
}

// DiscoverPage is everything the discover screen renders
type DiscoverPage struct {
	Featured   []DramaSeries `json:"featured"`
	Top10      []DramaSeries `json:"top10"`
	Categories []string      `json:"categories"`
	Feed       []DramaSeries `json:"feed"`
}

// DramaDetails is a drama with its ordered episodes
type DramaDetails struct {
	Drama      DramaSeries    `json:"drama"`
	Episodes   []DramaEpisode `json:"episodes"`
	InPlaylist bool           `json:"inPlaylist"`
	Locked     bool           `json:"locked"`
}

// UpsertDramaRequest is the admin payload for dramas/{id}
type UpsertDramaRequest struct {
	Title      string   `json:"title" binding:"required"`
	Subtitle   string   `json:"subtitle"`
	CoverURL   string   `json:"coverUrl"`
	PosterURL  string   `json:"posterUrl"`
	Categories []string `json:"categories"`
	IsFeatured bool     `json:"isFeatured"`
	IsVip      bool     `json:"isVip"`
	TopRank    int      `json:"topRank"`
}

// UpsertDramaEpisodeRequest is the admin payload for an editorial episode
type UpsertDramaEpisodeRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl" binding:"required"`
	ThumbURL    string `json:"thumbUrl"`
	DurationSec int    `json:"durationSec"`
}
