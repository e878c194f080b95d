package services

import "github.com/Randomizando3/DramaBoxV2/internal/rtdb"

// Realtime Database layout
const (
	dramasRoot            = "dramas"
	episodesRoot          = "episodes"
	rewardDefinitionsPath = "rewards/definitions"
	rewardShopPath        = "rewards/shop"
	communitySeriesRoot   = "community/series"
	communityMetricsRoot  = "community/metrics/series"
	communityRoyaltyPath  = "community/config/royalty"
	communityEarningsRoot = "community/earnings/creators"
	communityLikesRoot    = "community/interactions/likes"
	communityWatchRoot    = "community/watch"
	communityCreatorsRoot = "community/creators"
	affiliateCodesRoot    = "affiliates/codes"
	affiliateLeadsRoot    = "affiliates/leads"
	affiliateStatsRoot    = "affiliates/stats"
	affiliateRoyaltyPath  = "affiliates/config/royalty"
)

func profilePath(uid string) string { return rtdb.Join("users", uid, "profile") }

func walletPath(uid string) string { return rtdb.Join("users", uid, "wallet") }

func playlistPath(uid string) string { return rtdb.Join("users", uid, "playlist") }

func continuePath(uid string) string { return rtdb.Join("users", uid, "continue") }

func userAffiliatePath(uid string) string { return rtdb.Join("users", uid, "affiliate") }

func checkinPath(uid string) string { return rtdb.Join("users", uid, "rewards", "checkin") }

func dailyClaimsPath(uid, dateKey string) string {
	return rtdb.Join("users", uid, "rewards", "daily", dateKey)
}

func permanentClaimsPath(uid string) string { return rtdb.Join("users", uid, "rewards", "permanent") }

func manualMissionsPath(uid string) string { return rtdb.Join("users", uid, "rewards", "manual") }

func seriesPath(id string) string { return rtdb.Join(communitySeriesRoot, id) }

func seriesEpisodesPath(id string) string { return rtdb.Join(communitySeriesRoot, id, "episodes") }

func metricsPath(id string) string { return rtdb.Join(communityMetricsRoot, id) }

func earningsPath(uid string) string { return rtdb.Join(communityEarningsRoot, uid) }

func creatorSeriesPath(uid string) string { return rtdb.Join(communityCreatorsRoot, uid, "series") }

func likePath(uid, seriesID string) string { return rtdb.Join(communityLikesRoot, uid, seriesID) }

func watchPath(uid, seriesID, episodeID string) string {
	return rtdb.Join(communityWatchRoot, uid, seriesID, episodeID)
}
