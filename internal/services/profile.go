// ===============================
// internal/services/profile.go - User profiles
// ===============================

package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
	"github.com/Randomizando3/DramaBoxV2/internal/storage"

	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	store    rtdb.Store
	uploader storage.Uploader
	now      func() time.Time
}

func NewProfileService(store rtdb.Store, uploader storage.Uploader) *ProfileService {
	return &ProfileService{store: store, uploader: uploader, now: time.Now}
}

// GetProfile returns nil when the user has no profile yet
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile *models.UserProfile
	if err := s.store.Get(ctx, profilePath(userID), &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	profile.UserID = userID
	if profile.Plan == "" {
		profile.Plan = models.PlanFree
	}
	if profile.CreatedAtUnix == 0 {
		profile.CreatedAtUnix = s.now().Unix()
	}
	return s.store.Set(ctx, profilePath(userID), profile)
}

// EnsureProfile loads the profile, creating a free one when it is missing
func (s *ProfileService) EnsureProfile(ctx context.Context, userID, email, name string) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if strings.TrimSpace(profile.Name) == "" {
			profile.Name = profile.DisplayName()
		}
		return profile, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = models.NameFromEmail(email)
	}
	profile = &models.UserProfile{
		Email: strings.TrimSpace(email),
		Name:  name,
		Plan:  models.PlanFree,
	}
	if err := s.UpsertProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	values := map[string]interface{}{"name": name}
	if req.PhotoURL != "" {
		values["photoUrl"] = strings.TrimSpace(req.PhotoURL)
	}
	if err := s.store.Update(ctx, profilePath(userID), values); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// SetPlan switches between free and premium without payment. Free clears any
// expiry. Premium keeps a running expiry and only drops one already past.
func (s *ProfileService) SetPlan(ctx context.Context, userID, plan string) (*models.UserProfile, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan != models.PlanFree && plan != models.PlanPremium {
		return nil, ErrInvalidPlan
	}

	values := map[string]interface{}{"plan": plan}
	if plan == models.PlanFree {
		values["premiumUntilUnix"] = 0
	} else {
		var current models.UserProfile
		if err := s.store.Get(ctx, profilePath(userID), &current); err != nil {
			return nil, err
		}
		if current.PremiumUntilUnix > 0 && current.PremiumUntilUnix <= s.now().Unix() {
			values["premiumUntilUnix"] = 0
		}
	}

	if err := s.store.Update(ctx, profilePath(userID), values); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UploadPhoto stores users/{uid}/profile.jpg and saves its URL on the profile
func (s *ProfileService) UploadPhoto(ctx context.Context, userID string, body io.Reader) (string, error) {
	url, err := s.uploader.Upload(ctx, rtdb.Join("users", userID, "profile.jpg"), "image/jpeg", body)
	if err != nil {
		return "", err
	}
	if err := s.store.Update(ctx, profilePath(userID), map[string]interface{}{"photoUrl": url}); err != nil {
		return "", err
	}
	return url, nil
}

// Stats counts likes received across the user's series, what they published
// and how many dramas they saved
func (s *ProfileService) Stats(ctx context.Context, userID string) (*models.ProfileStats, error) {
	var owned map[string]bool
	if err := s.store.Get(ctx, creatorSeriesPath(userID), &owned); err != nil {
		return nil, err
	}

	var (
		metrics  = make([]models.SeriesMetrics, len(owned))
		episodes = make([]int, len(owned))
		saved    map[string]models.PlaylistItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.Get(gctx, playlistPath(userID), &saved)
	})
	i := 0
	for seriesID := range owned {
		idx, id := i, seriesID
		g.Go(func() error {
			return s.store.Get(gctx, metricsPath(id), &metrics[idx])
		})
		g.Go(func() error {
			var eps map[string]models.CommunityEpisode
			if err := s.store.Get(gctx, seriesEpisodesPath(id), &eps); err != nil {
				return err
			}
			episodes[idx] = len(eps)
			return nil
		})
		i++
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.ProfileStats{SeriesPublished: len(owned), Saved: len(saved)}
	for idx := range metrics {
		stats.LikesReceived += toLongSafe(metrics[idx].Likes)
		stats.EpisodesPublished += episodes[idx]
	}
	stats.LikesLabel = FormatCompact(stats.LikesReceived)
	return stats, nil
}

// FormatCompact renders counters as 999, 1.2k, 3.4M
func FormatCompact(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 999_950:
		return trimDecimal(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	default:
		return trimDecimal(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	}
}

func trimDecimal(s string) string {
	return strings.TrimSuffix(s, ".0")
}
