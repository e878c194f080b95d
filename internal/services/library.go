// ===============================
// internal/services/library.go - Playlist and continue watching
// ===============================

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
)

const defaultContinueTake = 30

type LibraryService struct {
	store     rtdb.Store
	catalog   *CatalogService
	community *CommunityService
	now       func() time.Time
}

func NewLibraryService(store rtdb.Store, catalog *CatalogService, community *CommunityService) *LibraryService {
	return &LibraryService{store: store, catalog: catalog, community: community, now: time.Now}
}

// TogglePlaylist saves or unsaves a drama and returns whether it is now saved
func (s *LibraryService) TogglePlaylist(ctx context.Context, userID string, req *models.PlaylistToggleRequest) (bool, error) {
	if !rtdb.ValidKey(req.DramaID) {
		return false, fmt.Errorf("%w: bad drama id", ErrInvalidInput)
	}
	path := rtdb.Join(playlistPath(userID), req.DramaID)

	item := models.PlaylistItem{
		DramaID:     req.DramaID,
		Title:       strings.TrimSpace(req.Title),
		Subtitle:    strings.TrimSpace(req.Subtitle),
		CoverURL:    strings.TrimSpace(req.CoverURL),
		AddedAtUnix: s.now().Unix(),
	}

	var added bool
	err := s.store.Transaction(ctx, path, func(current rtdb.Node) (interface{}, error) {
		var existing *models.PlaylistItem
		if err := current.Unmarshal(&existing); err != nil {
			return nil, err
		}
		added = existing == nil
		if added {
			return item, nil
		}
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *LibraryService) RemoveFromPlaylist(ctx context.Context, userID, dramaID string) error {
	if !rtdb.ValidKey(dramaID) {
		return ErrNotFound
	}
	return s.store.Delete(ctx, rtdb.Join(playlistPath(userID), dramaID))
}

// GetPlaylist returns saved dramas, most recently saved first
func (s *LibraryService) GetPlaylist(ctx context.Context, userID string) ([]models.PlaylistItem, error) {
	var all map[string]models.PlaylistItem
	if err := s.store.Get(ctx, playlistPath(userID), &all); err != nil {
		return nil, err
	}

	items := make([]models.PlaylistItem, 0, len(all))
	for id, it := range all {
		if it.DramaID == "" {
			it.DramaID = id
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AddedAtUnix != items[j].AddedAtUnix {
			return items[i].AddedAtUnix > items[j].AddedAtUnix
		}
		return items[i].DramaID < items[j].DramaID
	})
	return items, nil
}

func (s *LibraryService) PlaylistCount(ctx context.Context, userID string) (int, error) {
	var all map[string]models.PlaylistItem
	if err := s.store.Get(ctx, playlistPath(userID), &all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// UpsertContinue remembers where the user stopped in a drama
func (s *LibraryService) UpsertContinue(ctx context.Context, userID string, item *models.ContinueItem) error {
	if !rtdb.ValidKey(item.DramaID) {
		return fmt.Errorf("%w: bad drama id", ErrInvalidInput)
	}
	item.PositionSeconds = max(item.PositionSeconds, 0)
	item.DurationSeconds = max(item.DurationSeconds, 0)
	item.UpdatedAtUnix = s.now().Unix()
	return s.store.Set(ctx, rtdb.Join(continuePath(userID), item.DramaID), item)
}

// GetContinue returns the most recently watched dramas
func (s *LibraryService) GetContinue(ctx context.Context, userID string, take int) ([]models.ContinueItem, error) {
	if take <= 0 {
		take = defaultContinueTake
	}

	var all map[string]models.ContinueItem
	if err := s.store.Get(ctx, continuePath(userID), &all); err != nil {
		return nil, err
	}

	items := make([]models.ContinueItem, 0, len(all))
	for id, it := range all {
		if it.DramaID == "" {
			it.DramaID = id
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UpdatedAtUnix != items[j].UpdatedAtUnix {
			return items[i].UpdatedAtUnix > items[j].UpdatedAtUnix
		}
		return items[i].DramaID < items[j].DramaID
	})
	if len(items) > take {
		items = items[:take]
	}
	return items, nil
}

// OpenSaved resolves a saved id. Community series win over editorial dramas
// since both share the playlist.
func (s *LibraryService) OpenSaved(ctx context.Context, userID, dramaID string) (*models.SavedTarget, error) {
	series, err := s.community.GetSeries(ctx, userID, dramaID)
	switch {
	case err == nil:
		episodes, err := s.community.EpisodeFeedFromSeries(ctx, userID, dramaID)
		if err != nil {
			return nil, err
		}
		return &models.SavedTarget{Kind: "community", Series: series, Episodes: episodes}, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	details, err := s.catalog.Details(ctx, userID, dramaID)
	if err != nil {
		return nil, err
	}
	return &models.SavedTarget{Kind: "drama", Drama: &details.Drama}, nil
}
