// ===============================
// internal/services/catalog.go - Editorial dramas
// ===============================

package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"

	"github.com/google/uuid"
)

// Categories always listed first on the discover screen
var fixedCategories = []string{"Novidades", "Destaques", "Romântico", "Ação"}

type CatalogService struct {
	store    rtdb.Store
	profiles *ProfileService
	now      func() time.Time
}

func NewCatalogService(store rtdb.Store, profiles *ProfileService) *CatalogService {
	return &CatalogService{store: store, profiles: profiles, now: time.Now}
}

func (s *CatalogService) ListDramas(ctx context.Context) ([]models.DramaSeries, error) {
	var all map[string]models.DramaSeries
	if err := s.store.Get(ctx, dramasRoot, &all); err != nil {
		return nil, err
	}

	dramas := make([]models.DramaSeries, 0, len(all))
	for id, d := range all {
		if d.ID == "" {
			d.ID = id
		}
		dramas = append(dramas, d)
	}
	sort.SliceStable(dramas, func(i, j int) bool { return dramas[i].ID < dramas[j].ID })
	return dramas, nil
}

func (s *CatalogService) GetDrama(ctx context.Context, dramaID string) (*models.DramaSeries, error) {
	if !rtdb.ValidKey(dramaID) {
		return nil, ErrNotFound
	}
	var drama *models.DramaSeries
	if err := s.store.Get(ctx, rtdb.Join(dramasRoot, dramaID), &drama); err != nil {
		return nil, err
	}
	if drama == nil {
		return nil, ErrNotFound
	}
	if drama.ID == "" {
		drama.ID = dramaID
	}
	return drama, nil
}

// GetEpisodes returns the drama's episodes ordered by number
func (s *CatalogService) GetEpisodes(ctx context.Context, dramaID string) ([]models.DramaEpisode, error) {
	var all map[string]models.DramaEpisode
	if err := s.store.Get(ctx, rtdb.Join(episodesRoot, dramaID), &all); err != nil {
		return nil, err
	}

	episodes := make([]models.DramaEpisode, 0, len(all))
	for id, ep := range all {
		if ep.ID == "" {
			ep.ID = id
		}
		episodes = append(episodes, ep)
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		if episodes[i].Number != episodes[j].Number {
			return episodes[i].Number < episodes[j].Number
		}
		return episodes[i].ID < episodes[j].ID
	})
	return episodes, nil
}

// Details loads a drama for the player. VIP dramas hide their video URLs
// unless the caller has an active premium plan.
func (s *CatalogService) Details(ctx context.Context, userID, dramaID string) (*models.DramaDetails, error) {
	drama, err := s.GetDrama(ctx, dramaID)
	if err != nil {
		return nil, err
	}
	episodes, err := s.GetEpisodes(ctx, dramaID)
	if err != nil {
		return nil, err
	}

	details := &models.DramaDetails{Drama: *drama, Episodes: episodes}

	if userID != "" {
		var saved *models.PlaylistItem
		if err := s.store.Get(ctx, rtdb.Join(playlistPath(userID), dramaID), &saved); err != nil {
			return nil, err
		}
		details.InPlaylist = saved != nil
	}

	if drama.IsVip {
		ok, err := s.CanWatch(ctx, userID, drama)
		if err != nil {
			return nil, err
		}
		if !ok {
			details.Locked = true
			for i := range details.Episodes {
				details.Episodes[i].VideoURL = ""
			}
		}
	}
	return details, nil
}

// CanWatch reports whether userID may stream the drama
func (s *CatalogService) CanWatch(ctx context.Context, userID string, drama *models.DramaSeries) (bool, error) {
	if !drama.IsVip {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile != nil && profile.PremiumActive(s.now()), nil
}

// PlayEpisode returns one episode with its video URL, or ErrPremiumRequired
// for a VIP drama the caller cannot stream
func (s *CatalogService) PlayEpisode(ctx context.Context, userID, dramaID, episodeID string) (*models.DramaEpisode, error) {
	if !rtdb.ValidKey(episodeID) {
		return nil, ErrNotFound
	}
	drama, err := s.GetDrama(ctx, dramaID)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanWatch(ctx, userID, drama)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPremiumRequired
	}

	var ep *models.DramaEpisode
	if err := s.store.Get(ctx, rtdb.Join(episodesRoot, dramaID, episodeID), &ep); err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, ErrNotFound
	}
	if ep.ID == "" {
		ep.ID = episodeID
	}
	return ep, nil
}

// Discover builds the featured carousel, top 10, category chips and feed
func (s *CatalogService) Discover(ctx context.Context, category, query string) (*models.DiscoverPage, error) {
	all, err := s.ListDramas(ctx)
	if err != nil {
		return nil, err
	}

	page := &models.DiscoverPage{
		Featured:   []models.DramaSeries{},
		Categories: categoriesOf(all),
		Feed:       filterFeed(all, category, query),
	}

	for _, d := range all {
		if d.IsFeatured {
			page.Featured = append(page.Featured, d)
		}
	}
	sortByRank(page.Featured)

	top := append([]models.DramaSeries(nil), all...)
	sortByRank(top)
	if len(top) > 10 {
		top = top[:10]
	}
	page.Top10 = top

	return page, nil
}

// SeriesList is the "see all" list for a category and search term
func (s *CatalogService) SeriesList(ctx context.Context, category, query string) ([]models.DramaSeries, error) {
	all, err := s.ListDramas(ctx)
	if err != nil {
		return nil, err
	}
	return filterFeed(all, category, query), nil
}

func (s *CatalogService) UpsertDrama(ctx context.Context, dramaID string, req *models.UpsertDramaRequest) (*models.DramaSeries, error) {
	if dramaID == "" {
		dramaID = newID()
	}
	if !rtdb.ValidKey(dramaID) {
		return nil, fmt.Errorf("%w: bad drama id", ErrInvalidInput)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	drama := &models.DramaSeries{
		ID:            dramaID,
		Title:         title,
		Subtitle:      strings.TrimSpace(req.Subtitle),
		CoverURL:      strings.TrimSpace(req.CoverURL),
		PosterURL:     strings.TrimSpace(req.PosterURL),
		Categories:    cleanList(req.Categories),
		IsFeatured:    req.IsFeatured,
		IsVip:         req.IsVip,
		TopRank:       req.TopRank,
		UpdatedAtUnix: s.now().Unix(),
	}
	if err := s.store.Set(ctx, rtdb.Join(dramasRoot, dramaID), drama); err != nil {
		return nil, err
	}
	return drama, nil
}

func (s *CatalogService) UpsertEpisode(ctx context.Context, dramaID, episodeID string, req *models.UpsertDramaEpisodeRequest) (*models.DramaEpisode, error) {
	if _, err := s.GetDrama(ctx, dramaID); err != nil {
		return nil, err
	}
	if episodeID == "" {
		episodeID = newID()
	}
	if !rtdb.ValidKey(episodeID) {
		return nil, fmt.Errorf("%w: bad episode id", ErrInvalidInput)
	}

	ep := &models.DramaEpisode{
		ID:          episodeID,
		Number:      max(req.Number, 1),
		Title:       strings.TrimSpace(req.Title),
		VideoURL:    strings.TrimSpace(req.VideoURL),
		ThumbURL:    strings.TrimSpace(req.ThumbURL),
		DurationSec: max(req.DurationSec, 0),
	}
	err := s.store.Update(ctx, "", map[string]interface{}{
		rtdb.Join(episodesRoot, dramaID, episodeID):     ep,
		rtdb.Join(dramasRoot, dramaID, "updatedAtUnix"): s.now().Unix(),
	})
	if err != nil {
		return nil, err
	}
	return ep, nil
}

func (s *CatalogService) DeleteDrama(ctx context.Context, dramaID string) error {
	if !rtdb.ValidKey(dramaID) {
		return ErrNotFound
	}
	return s.store.Update(ctx, "", map[string]interface{}{
		rtdb.Join(dramasRoot, dramaID):   nil,
		rtdb.Join(episodesRoot, dramaID): nil,
	})
}

func categoriesOf(all []models.DramaSeries) []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	for _, c := range fixedCategories {
		add(c)
	}

	var dynamic []string
	for _, d := range all {
		dynamic = append(dynamic, d.Categories...)
	}
	sort.SliceStable(dynamic, func(i, j int) bool {
		return strings.ToLower(dynamic[i]) < strings.ToLower(dynamic[j])
	})
	for _, c := range dynamic {
		add(c)
	}
	return out
}

func filterFeed(all []models.DramaSeries, category, query string) []models.DramaSeries {
	category = strings.TrimSpace(category)
	feed := []models.DramaSeries{}
	for _, d := range all {
		if category != "" && !d.HasCategory(category) {
			continue
		}
		if !d.Matches(query) {
			continue
		}
		feed = append(feed, d)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		if feed[i].UpdatedAtUnix != feed[j].UpdatedAtUnix {
			return feed[i].UpdatedAtUnix > feed[j].UpdatedAtUnix
		}
		return rankKey(feed[i].TopRank) < rankKey(feed[j].TopRank)
	})
	return feed
}

// sortByRank puts ranked dramas first, unranked (0) last, newest first on ties
func sortByRank(list []models.DramaSeries) {
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := rankKey(list[i].TopRank), rankKey(list[j].TopRank)
		if ri != rj {
			return ri < rj
		}
		return list[i].UpdatedAtUnix > list[j].UpdatedAtUnix
	})
}

func rankKey(rank int) int {
	if rank == 0 {
		return math.MaxInt
	}
	return rank
}

func cleanList(items []string) []string {
	out := []string{}
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// newID returns a 32 character hex id
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
