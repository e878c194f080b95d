// ===============================
// internal/services/community.go - Creator series, metrics and royalties
// ===============================

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
	"github.com/Randomizando3/DramaBoxV2/internal/storage"

	"golang.org/x/sync/errgroup"
)

const (
	defaultFeedTake        = 60
	defaultEpisodeFeedTake = 50
	maxFeedTake            = 200
)

// seriesNode is a series as stored, episodes nested under it
type seriesNode struct {
	models.CommunitySeries
	Episodes map[string]models.CommunityEpisode `json:"episodes,omitempty"`
}

func (n *seriesNode) orderedEpisodes() []models.CommunityEpisode {
	eps := make([]models.CommunityEpisode, 0, len(n.Episodes))
	for id, ep := range n.Episodes {
		if ep.ID == "" {
			ep.ID = id
		}
		eps = append(eps, ep)
	}
	sort.SliceStable(eps, func(i, j int) bool {
		if eps[i].Number != eps[j].Number {
			return eps[i].Number < eps[j].Number
		}
		return eps[i].CreatedAtUnix < eps[j].CreatedAtUnix
	})
	return eps
}

type CommunityService struct {
	store    rtdb.Store
	profiles *ProfileService
	uploader storage.Uploader
	notifier Notifier
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
}

func NewCommunityService(store rtdb.Store, profiles *ProfileService, uploader storage.Uploader, notifier Notifier) *CommunityService {
	return &CommunityService{
		store:    store,
		profiles: profiles,
		uploader: uploader,
		notifier: notifierOrNoop(notifier),
		now:      time.Now,
		shuffle:  rand.Shuffle,
	}
}

// ===============================
// READS
// ===============================

func (s *CommunityService) loadAll(ctx context.Context) ([]seriesNode, error) {
	var all map[string]seriesNode
	if err := s.store.Get(ctx, communitySeriesRoot, &all); err != nil {
		return nil, err
	}
	out := make([]seriesNode, 0, len(all))
	for id, n := range all {
		if n.ID == "" {
			n.ID = id
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CommunityService) loadSeries(ctx context.Context, seriesID string) (*seriesNode, error) {
	if !rtdb.ValidKey(seriesID) {
		return nil, ErrNotFound
	}
	var node *seriesNode
	if err := s.store.Get(ctx, seriesPath(seriesID), &node); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, ErrNotFound
	}
	if node.ID == "" {
		node.ID = seriesID
	}
	return node, nil
}

// Feed lists published series for a tab with their counters
func (s *CommunityService) Feed(ctx context.Context, userID, tab string, take int) ([]models.CommunityFeedItem, error) {
	take = clampTake(take, defaultFeedTake)

	var (
		all     []seriesNode
		metrics map[string]models.SeriesMetrics
		liked   map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.loadAll(gctx)
		return err
	})
	g.Go(func() error {
		return s.store.Get(gctx, communityMetricsRoot, &metrics)
	})
	if userID != "" {
		g.Go(func() error {
			return s.store.Get(gctx, rtdb.Join(communityLikesRoot, userID), &liked)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.CommunityFeedItem, 0, len(all))
	for _, n := range all {
		if !n.IsPublished {
			continue
		}
		m := metrics[n.ID]
		items = append(items, models.CommunityFeedItem{
			Series:         n.CommunitySeries,
			Likes:          toLongSafe(m.Likes),
			Shares:         toLongSafe(m.Shares),
			MinutesWatched: toLongSafe(m.MinutesWatched),
			Liked:          liked[n.ID],
		})
	}

	switch strings.ToLower(strings.TrimSpace(tab)) {
	case models.FeedTabPopular:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Likes+items[i].Shares > items[j].Likes+items[j].Shares
		})
	case models.FeedTabCommunity:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Series.CreatedAtUnix > items[j].Series.CreatedAtUnix
		})
	case models.FeedTabRandom:
		s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Series.UpdatedAtUnix > items[j].Series.UpdatedAtUnix
		})
	}

	if len(items) > take {
		items = items[:take]
	}
	return items, nil
}

// visibleSeries loads a series for viewerID. Drafts exist only for their creator.
func (s *CommunityService) visibleSeries(ctx context.Context, viewerID, seriesID string) (*seriesNode, error) {
	node, err := s.loadSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if !node.IsPublished && (viewerID == "" || viewerID != node.CreatorUserID) {
		return nil, ErrNotFound
	}
	return node, nil
}

func (s *CommunityService) GetSeries(ctx context.Context, viewerID, seriesID string) (*models.CommunitySeries, error) {
	node, err := s.visibleSeries(ctx, viewerID, seriesID)
	if err != nil {
		return nil, err
	}
	return &node.CommunitySeries, nil
}

// GetEpisodes returns the series episodes ordered by number
func (s *CommunityService) GetEpisodes(ctx context.Context, viewerID, seriesID string) ([]models.CommunityEpisode, error) {
	node, err := s.visibleSeries(ctx, viewerID, seriesID)
	if err != nil {
		return nil, err
	}
	return node.orderedEpisodes(), nil
}

// EpisodeFeedFromSeries turns one series into vertical-player entries
func (s *CommunityService) EpisodeFeedFromSeries(ctx context.Context, viewerID, seriesID string) ([]models.FeedEpisodeItem, error) {
	node, err := s.visibleSeries(ctx, viewerID, seriesID)
	if err != nil {
		return nil, err
	}
	return feedItems(node, node.orderedEpisodes()), nil
}

// RandomEpisodeFeed walks shuffled published series, episodes in order,
// until take entries are collected
func (s *CommunityService) RandomEpisodeFeed(ctx context.Context, take int) ([]models.FeedEpisodeItem, error) {
	take = clampTake(take, defaultEpisodeFeedTake)

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	published := all[:0]
	for _, n := range all {
		if n.IsPublished {
			published = append(published, n)
		}
	}
	s.shuffle(len(published), func(i, j int) { published[i], published[j] = published[j], published[i] })

	feed := make([]models.FeedEpisodeItem, 0, take)
	for i := range published {
		for _, item := range feedItems(&published[i], published[i].orderedEpisodes()) {
			feed = append(feed, item)
			if len(feed) >= take {
				return feed, nil
			}
		}
	}
	return feed, nil
}

func feedItems(node *seriesNode, eps []models.CommunityEpisode) []models.FeedEpisodeItem {
	items := make([]models.FeedEpisodeItem, 0, len(eps))
	for _, ep := range eps {
		items = append(items, models.FeedEpisodeItem{
			DramaID:       node.ID,
			DramaTitle:    node.Title,
			DramaSubtitle: node.Subtitle,
			CoverURL:      node.CoverURL,
			CreatorUserID: node.CreatorUserID,
			CreatorName:   node.CreatorName,
			EpisodeID:     ep.ID,
			EpisodeNumber: ep.Number,
			EpisodeTitle:  ep.Title,
			VideoURL:      ep.VideoURL,
		})
	}
	return items
}

func (s *CommunityService) ownedIDs(ctx context.Context, creatorUID string) ([]string, error) {
	var owned map[string]bool
	if err := s.store.Get(ctx, creatorSeriesPath(creatorUID), &owned); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(owned))
	for id, ok := range owned {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// CreatorSeries lists everything a creator published, newest first
func (s *CommunityService) CreatorSeries(ctx context.Context, creatorUID string) ([]models.CreatorSeriesItem, error) {
	ids, err := s.ownedIDs(ctx, creatorUID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*seriesNode, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			node, err := s.loadSeries(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			nodes[i] = node
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := []models.CreatorSeriesItem{}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		items = append(items, models.CreatorSeriesItem{Series: n.CommunitySeries, EpisodeCount: len(n.Episodes)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Series.CreatedAtUnix > items[j].Series.CreatedAtUnix
	})
	return items, nil
}

// CreatorDashboard sums metrics over the creator's series plus earnings
func (s *CommunityService) CreatorDashboard(ctx context.Context, creatorUID string) (*models.CreatorDashboard, error) {
	ids, err := s.ownedIDs(ctx, creatorUID)
	if err != nil {
		return nil, err
	}

	var (
		metrics  = make([]models.SeriesMetrics, len(ids))
		earnings models.CreatorEarnings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.Get(gctx, earningsPath(creatorUID), &earnings)
	})
	for i, id := range ids {
		g.Go(func() error {
			return s.store.Get(gctx, metricsPath(id), &metrics[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var likes, shares, minutes float64
	for _, m := range metrics {
		likes += m.Likes
		shares += m.Shares
		minutes += m.MinutesWatched
	}
	cents := math.Max(earnings.CentsTotal, 0)
	return &models.CreatorDashboard{
		SeriesCount:    len(ids),
		Likes:          toLongSafe(likes),
		Shares:         toLongSafe(shares),
		MinutesWatched: toLongSafe(minutes),
		CentsTotal:     cents,
		RevenueReais:   cents / 100,
	}, nil
}

// ===============================
// CREATION
// ===============================

// CreateSeries publishes a new series owned by userID
func (s *CommunityService) CreateSeries(ctx context.Context, userID, email string, req *models.CreateSeriesRequest) (*models.CommunitySeries, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	creatorName := models.NameFromEmail(email)
	creatorVip := false
	if profile != nil {
		if profile.Email == "" {
			profile.Email = email
		}
		creatorName = profile.DisplayName()
		creatorVip = profile.PremiumActive(s.now())
	}

	now := s.now().Unix()
	series := &models.CommunitySeries{
		ID:            newID(),
		CreatorUserID: userID,
		CreatorName:   creatorName,
		CreatorIsVip:  creatorVip,
		Title:         title,
		Subtitle:      strings.TrimSpace(req.Subtitle),
		CoverURL:      strings.TrimSpace(req.CoverURL),
		IsPublished:   true,
		Tags:          cleanList(req.Tags),
		CreatedAtUnix: now,
		UpdatedAtUnix: now,
	}

	err = s.store.Update(ctx, "", map[string]interface{}{
		seriesPath(series.ID):                           series,
		rtdb.Join(creatorSeriesPath(userID), series.ID): true,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎬 Series %s created by %s", series.ID, userID)
	return series, nil
}

func (s *CommunityService) ownSeries(ctx context.Context, userID, seriesID string) (*seriesNode, error) {
	node, err := s.loadSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if node.CreatorUserID != userID {
		return nil, ErrForbidden
	}
	return node, nil
}

func (s *CommunityService) UpdateSeries(ctx context.Context, userID, seriesID string, req *models.UpdateSeriesRequest) (*models.CommunitySeries, error) {
	if _, err := s.ownSeries(ctx, userID, seriesID); err != nil {
		return nil, err
	}

	values := map[string]interface{}{"updatedAtUnix": s.now().Unix()}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		values["title"] = title
	}
	if req.Subtitle != nil {
		values["subtitle"] = strings.TrimSpace(*req.Subtitle)
	}
	if req.CoverURL != nil {
		values["coverUrl"] = strings.TrimSpace(*req.CoverURL)
	}
	if req.PosterURL != nil {
		values["posterUrl"] = strings.TrimSpace(*req.PosterURL)
	}
	if req.IsPublished != nil {
		values["isPublished"] = *req.IsPublished
	}
	if req.Tags != nil {
		values["tags"] = cleanList(req.Tags)
	}

	if err := s.store.Update(ctx, seriesPath(seriesID), values); err != nil {
		return nil, err
	}
	return s.GetSeries(ctx, userID, seriesID)
}

func validEpisode(req *models.EpisodeRequest) (models.CommunityEpisode, error) {
	videoURL := strings.TrimSpace(req.VideoURL)
	if !isMP4(videoURL) {
		return models.CommunityEpisode{}, ErrInvalidVideo
	}
	return models.CommunityEpisode{
		Number:          max(req.Number, 1),
		Title:           strings.TrimSpace(req.Title),
		VideoURL:        videoURL,
		DurationSeconds: max(req.DurationSeconds, 0),
	}, nil
}

// isMP4 checks the path part of the URL so tokenized links still pass
func isMP4(videoURL string) bool {
	if videoURL == "" {
		return false
	}
	p := videoURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ToLower(p)
	return strings.HasSuffix(p, ".mp4") || strings.HasSuffix(p, "%2emp4")
}

// AddEpisode appends an .mp4 episode, creator only
func (s *CommunityService) AddEpisode(ctx context.Context, userID, seriesID string, req *models.EpisodeRequest) (*models.CommunityEpisode, error) {
	ep, err := validEpisode(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownSeries(ctx, userID, seriesID); err != nil {
		return nil, err
	}

	now := s.now().Unix()
	ep.ID = newID()
	ep.CreatedAtUnix = now

	err = s.store.Update(ctx, seriesPath(seriesID), map[string]interface{}{
		rtdb.Join("episodes", ep.ID): ep,
		"updatedAtUnix":              now,
	})
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

func (s *CommunityService) UpdateEpisode(ctx context.Context, userID, seriesID, episodeID string, req *models.EpisodeRequest) (*models.CommunityEpisode, error) {
	ep, err := validEpisode(req)
	if err != nil {
		return nil, err
	}
	node, err := s.ownSeries(ctx, userID, seriesID)
	if err != nil {
		return nil, err
	}
	existing, ok := node.Episodes[episodeID]
	if !ok {
		return nil, ErrNotFound
	}

	ep.ID = episodeID
	ep.CreatedAtUnix = existing.CreatedAtUnix
	err = s.store.Update(ctx, seriesPath(seriesID), map[string]interface{}{
		rtdb.Join("episodes", episodeID): ep,
		"updatedAtUnix":                  s.now().Unix(),
	})
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

func (s *CommunityService) RemoveEpisode(ctx context.Context, userID, seriesID, episodeID string) error {
	node, err := s.ownSeries(ctx, userID, seriesID)
	if err != nil {
		return err
	}
	if _, ok := node.Episodes[episodeID]; !ok {
		return ErrNotFound
	}
	err = s.store.Update(ctx, seriesPath(seriesID), map[string]interface{}{
		rtdb.Join("episodes", episodeID): nil,
		"updatedAtUnix":                  s.now().Unix(),
	})
	if err != nil {
		return err
	}

	// episodes added by URL have no object, the bucket treats that as done
	if s.uploader != nil {
		if err := s.uploader.Delete(ctx, episodeObjectPath(userID, seriesID, episodeID)); err != nil {
			log.Printf("⚠️ Failed to delete video for episode %s/%s: %v", seriesID, episodeID, err)
		}
	}
	return nil
}

// UploadCover stores the cover image and saves its URL on the series
func (s *CommunityService) UploadCover(ctx context.Context, userID, seriesID, filename string, body io.Reader) (string, error) {
	if _, err := s.ownSeries(ctx, userID, seriesID); err != nil {
		return "", err
	}

	ext, contentType := ".jpg", "image/jpeg"
	if strings.HasSuffix(strings.ToLower(filename), ".png") {
		ext, contentType = ".png", "image/png"
	}
	objectPath := rtdb.Join("community", userID, "series", seriesID, "cover"+ext)

	url, err := s.uploader.Upload(ctx, objectPath, contentType, body)
	if err != nil {
		return "", err
	}
	err = s.store.Update(ctx, seriesPath(seriesID), map[string]interface{}{
		"coverUrl":      url,
		"updatedAtUnix": s.now().Unix(),
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

// UploadEpisodeVideo stores an .mp4 and returns its URL. The episode id is
// generated when empty so the client can add the episode afterwards.
func (s *CommunityService) UploadEpisodeVideo(ctx context.Context, userID, seriesID, episodeID string, body io.Reader) (string, string, error) {
	if _, err := s.ownSeries(ctx, userID, seriesID); err != nil {
		return "", "", err
	}
	if episodeID == "" {
		episodeID = newID()
	}
	if !rtdb.ValidKey(episodeID) {
		return "", "", fmt.Errorf("%w: bad episode id", ErrInvalidInput)
	}

	url, err := s.uploader.Upload(ctx, episodeObjectPath(userID, seriesID, episodeID), "video/mp4", body)
	if err != nil {
		return "", "", err
	}
	return url, episodeID, nil
}

func episodeObjectPath(userID, seriesID, episodeID string) string {
	return rtdb.Join("community", userID, "series", seriesID, "episodes", episodeID+".mp4")
}

// ===============================
// INTERACTIONS
// ===============================

func (s *CommunityService) royalty(ctx context.Context) models.RoyaltyConfig {
	cfg := models.DefaultRoyaltyConfig()
	var stored *models.RoyaltyConfig
	if err := s.store.Get(ctx, communityRoyaltyPath, &stored); err != nil {
		log.Printf("⚠️ Royalty config unavailable, using defaults: %v", err)
		return cfg
	}
	if stored != nil {
		if stored.PerLike > 0 {
			cfg.PerLike = stored.PerLike
		}
		if stored.PerShare > 0 {
			cfg.PerShare = stored.PerShare
		}
		if stored.PerMinuteWatched > 0 {
			cfg.PerMinuteWatched = stored.PerMinuteWatched
		}
	}
	return cfg
}

func (s *CommunityService) bumpMetrics(ctx context.Context, seriesID string, apply func(m *models.SeriesMetrics)) (models.SeriesMetrics, error) {
	var out models.SeriesMetrics
	err := s.store.Transaction(ctx, metricsPath(seriesID), func(current rtdb.Node) (interface{}, error) {
		var m models.SeriesMetrics
		if err := current.Unmarshal(&m); err != nil {
			return nil, err
		}
		apply(&m)
		m.Likes = math.Max(m.Likes, 0)
		m.Shares = math.Max(m.Shares, 0)
		m.MinutesWatched = math.Max(m.MinutesWatched, 0)
		m.UpdatedAtUnix = s.now().Unix()
		out = m
		return m, nil
	})
	return out, err
}

func (s *CommunityService) addEarnings(ctx context.Context, creatorUID string, cents float64) error {
	if creatorUID == "" || cents == 0 {
		return nil
	}
	return s.store.Transaction(ctx, earningsPath(creatorUID), func(current rtdb.Node) (interface{}, error) {
		var e models.CreatorEarnings
		if err := current.Unmarshal(&e); err != nil {
			return nil, err
		}
		e.CentsTotal = math.Max(e.CentsTotal+cents, 0)
		e.UpdatedAtUnix = s.now().Unix()
		return e, nil
	})
}

func (s *CommunityService) publishMetrics(seriesID, creatorUID string, m models.SeriesMetrics) {
	if creatorUID == "" {
		return
	}
	s.notifier.NotifyUser(creatorUID, EventMetricsUpdated, map[string]interface{}{
		"seriesId":       seriesID,
		"likes":          toLongSafe(m.Likes),
		"shares":         toLongSafe(m.Shares),
		"minutesWatched": toLongSafe(m.MinutesWatched),
	})
}

// ToggleLike flips the caller's like and moves the counter and royalties
// with it. Returns whether the series is now liked.
func (s *CommunityService) ToggleLike(ctx context.Context, userID, seriesID string) (bool, error) {
	series, err := s.GetSeries(ctx, userID, seriesID)
	if err != nil {
		return false, err
	}

	var nowLiked bool
	err = s.store.Transaction(ctx, likePath(userID, seriesID), func(current rtdb.Node) (interface{}, error) {
		var wasLiked bool
		if err := current.Unmarshal(&wasLiked); err != nil {
			return nil, err
		}
		nowLiked = !wasLiked
		if nowLiked {
			return true, nil
		}
		return nil, nil
	})
	if err != nil {
		return false, err
	}

	delta := -1.0
	if nowLiked {
		delta = 1.0
	}

	m, err := s.bumpMetrics(ctx, seriesID, func(m *models.SeriesMetrics) { m.Likes += delta })
	if err != nil {
		return false, err
	}
	if err := s.addEarnings(ctx, series.CreatorUserID, delta*s.royalty(ctx).PerLike); err != nil {
		return false, err
	}

	s.publishMetrics(seriesID, series.CreatorUserID, m)
	return nowLiked, nil
}

func (s *CommunityService) AddShare(ctx context.Context, seriesID string) error {
	series, err := s.GetSeries(ctx, "", seriesID)
	if err != nil {
		return err
	}

	m, err := s.bumpMetrics(ctx, seriesID, func(m *models.SeriesMetrics) { m.Shares++ })
	if err != nil {
		return err
	}
	if err := s.addEarnings(ctx, series.CreatorUserID, s.royalty(ctx).PerShare); err != nil {
		return err
	}

	s.publishMetrics(seriesID, series.CreatorUserID, m)
	return nil
}

// UpsertWatchSeconds records the furthest point watched. Only progress past
// the previous maximum counts toward minutes and royalties.
func (s *CommunityService) UpsertWatchSeconds(ctx context.Context, userID, seriesID, episodeID string, totalSeconds int64) error {
	if !rtdb.ValidKey(episodeID) {
		return fmt.Errorf("%w: bad episode id", ErrInvalidInput)
	}
	series, err := s.GetSeries(ctx, userID, seriesID)
	if err != nil {
		return err
	}
	totalSeconds = max(totalSeconds, 0)

	var delta int64
	err = s.store.Transaction(ctx, watchPath(userID, seriesID, episodeID), func(current rtdb.Node) (interface{}, error) {
		var p models.WatchProgress
		if err := current.Unmarshal(&p); err != nil {
			return nil, err
		}
		delta = 0
		if totalSeconds > p.Seconds {
			delta = totalSeconds - p.Seconds
			p.Seconds = totalSeconds
		}
		p.UpdatedAtUnix = s.now().Unix()
		return p, nil
	})
	if err != nil {
		return err
	}
	if delta <= 0 {
		return nil
	}

	minutes := float64(delta) / 60
	m, err := s.bumpMetrics(ctx, seriesID, func(m *models.SeriesMetrics) { m.MinutesWatched += minutes })
	if err != nil {
		return err
	}
	if err := s.addEarnings(ctx, series.CreatorUserID, minutes*s.royalty(ctx).PerMinuteWatched); err != nil {
		return err
	}

	s.publishMetrics(seriesID, series.CreatorUserID, m)
	return nil
}

// toLongSafe rounds a stored counter, treating NaN, infinities and negatives as 0
func toLongSafe(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Round(v))
}

func clampTake(take, def int) int {
	if take <= 0 {
		return def
	}
	return min(take, maxFeedTake)
}
