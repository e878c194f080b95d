package services

import (
	"sync"
	"testing"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistToggle(t *testing.T) {
	env := newTestEnv(t)

	saved, err := env.library.TogglePlaylist(env.ctx, "u1", &models.PlaylistToggleRequest{DramaID: "d1", Title: " First "})
	require.NoError(t, err)
	assert.True(t, saved)

	env.advance(time.Minute)
	_, err = env.library.TogglePlaylist(env.ctx, "u1", &models.PlaylistToggleRequest{DramaID: "d2", Title: "Second"})
	require.NoError(t, err)

	list, err := env.library.GetPlaylist(env.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d2", list[0].DramaID)
	assert.Equal(t, "First", list[1].Title)

	saved, err = env.library.TogglePlaylist(env.ctx, "u1", &models.PlaylistToggleRequest{DramaID: "d1"})
	require.NoError(t, err)
	assert.False(t, saved)

	count, err := env.library.PlaylistCount(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, env.library.RemoveFromPlaylist(env.ctx, "u1", "d2"))
	count, err = env.library.PlaylistCount(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = env.library.TogglePlaylist(env.ctx, "u1", &models.PlaylistToggleRequest{DramaID: "bad/id"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentPlaylistTogglesAlternate(t *testing.T) {
	env := newTestEnv(t)

	results := make([]bool, 3)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			saved, err := env.library.TogglePlaylist(env.ctx, "u1", &models.PlaylistToggleRequest{DramaID: "d1"})
			assert.NoError(t, err)
			results[i] = saved
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []bool{true, true, false}, results)
	count, err := env.library.PlaylistCount(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestContinueWatching(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.library.UpsertContinue(env.ctx, "u1", &models.ContinueItem{DramaID: "d1", EpisodeNumber: 1, PositionSeconds: -4}))
	env.advance(time.Minute)
	require.NoError(t, env.library.UpsertContinue(env.ctx, "u1", &models.ContinueItem{DramaID: "d2", EpisodeNumber: 3, PositionSeconds: 40}))
	env.advance(time.Minute)
	require.NoError(t, env.library.UpsertContinue(env.ctx, "u1", &models.ContinueItem{DramaID: "d1", EpisodeNumber: 2, PositionSeconds: 10}))

	items, err := env.library.GetContinue(env.ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "d1", items[0].DramaID)
	assert.Equal(t, 2, items[0].EpisodeNumber)
	assert.Equal(t, env.now.Unix(), items[0].UpdatedAtUnix)

	items, err = env.library.GetContinue(env.ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, env.library.UpsertContinue(env.ctx, "u1", &models.ContinueItem{}), ErrInvalidInput)
}

func TestOpenSavedPrefersCommunitySeries(t *testing.T) {
	env := newTestEnv(t)
	series := createSeries(t, env, "creator", "Show")
	_, err := env.community.AddEpisode(env.ctx, "creator", series.ID, &models.EpisodeRequest{VideoURL: "https://v/1.mp4"})
	require.NoError(t, err)
	seedDrama(t, env, models.DramaSeries{ID: series.ID, Title: "Editorial twin"})
	seedDrama(t, env, models.DramaSeries{ID: "d1", Title: "Editorial"})

	target, err := env.library.OpenSaved(env.ctx, "u1", series.ID)
	require.NoError(t, err)
	assert.Equal(t, "community", target.Kind)
	assert.Equal(t, "Show", target.Series.Title)
	assert.Len(t, target.Episodes, 1)

	target, err = env.library.OpenSaved(env.ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "drama", target.Kind)
	assert.Equal(t, "Editorial", target.Drama.Title)

	_, err = env.library.OpenSaved(env.ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
