// ===============================
// internal/models/rewards.go - Check-in, Missions and VIP Shop
// ===============================

package models

// Check-in cycle
const (
	CheckinCycleDays  = 7
	CheckinDailyCoins = 5
	CheckinVipDays    = 1
)

// Mission action states
const (
	MissionDone    = "done"
	MissionPending = "pending"
	MissionSend    = "send"
	MissionClaim   = "claim"
)

// Manual mission statuses
const (
	ManualPending  = "pending"
	ManualApproved = "approved"
	ManualCredited = "credited"
	ManualRejected = "rejected"
)

// ManualInputMaxLen bounds the handle or link a user sends for review
const ManualInputMaxLen = 120

// RewardCheckin is stored at users/{uid}/rewards/checkin
type RewardCheckin struct {
	Streak        int    `json:"streak"`
	LastDateKey   string `json:"lastDateKey"`
	UpdatedAtUnix int64  `json:"updatedAtUnix"`
}

// RewardDefinition is stored at rewards/definitions/{id}
type RewardDefinition struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Coins                 int64  `json:"coins"`
	IsDaily               bool   `json:"isDaily"`
	RequiresManualApprove bool   `json:"requiresManualApprove"`
	InputLabel            string `json:"inputLabel,omitempty"`
	InputPlaceholder      string `json:"inputPlaceholder,omitempty"`
	Icon                  string `json:"icon,omitempty"`
	Sort                  int    `json:"sort"`
	Enabled               *bool  `json:"enabled,omitempty"`
}

// Active treats a missing enabled flag as enabled
func (d *RewardDefinition) Active() bool {
	return d.Enabled == nil || *d.Enabled
}

// RewardClaim is stored under rewards/daily/{dateKey} or rewards/permanent
type RewardClaim struct {
	Done   bool  `json:"done"`
	Coins  int64 `json:"coins"`
	AtUnix int64 `json:"atUnix"`
}

// RewardPendingManual is stored at users/{uid}/rewards/manual/{missionId}
type RewardPendingManual struct {
	Status          string `json:"status"`
	Input           string `json:"input"`
	IsDaily         bool   `json:"isDaily"`
	DateKey         string `json:"dateKey,omitempty"`
	SubmittedAtUnix int64  `json:"submittedAtUnix"`
	ReviewedAtUnix  int64  `json:"reviewedAtUnix,omitempty"`
}

// RewardShopItem is stored at rewards/shop/{id}
type RewardShopItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CostCoins   int64  `json:"costCoins"`
	VipDays     int    `json:"vipDays"`
	Sort        int    `json:"sort"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

func (it *RewardShopItem) Active() bool {
	return it.Enabled == nil || *it.Enabled
}

// CheckinDay is one slot of the 7-day strip
type CheckinDay struct {
	Day       int    `json:"day"`
	Reward    string `json:"reward"` // "coins" or "vip"
	Amount    int64  `json:"amount"`
	Completed bool   `json:"completed"`
}

// CheckinView is the check-in strip state
type CheckinView struct {
	Streak    int          `json:"streak"`
	DidToday  bool         `json:"didToday"`
	BaseStart int          `json:"baseStart"`
	Days      []CheckinDay `json:"days"`
}

// CheckinResult is returned by the daily check-in
type CheckinResult struct {
	Applied bool          `json:"applied"`
	Streak  int           `json:"streak"`
	Reward  string        `json:"reward,omitempty"`
	Amount  int64         `json:"amount,omitempty"`
	Checkin RewardCheckin `json:"checkin"`
}

// MissionView is a definition plus the caller's state
type MissionView struct {
	RewardDefinition
	State string `json:"state"`
}

// RewardsOverview is the whole rewards screen
type RewardsOverview struct {
	Coins    int64            `json:"coins"`
	VipLabel string           `json:"vipLabel"`
	Checkin  CheckinView      `json:"checkin"`
	Missions []MissionView    `json:"missions"`
	Shop     []RewardShopItem `json:"shop"`
}

// SubmitMissionRequest sends a manual mission for review
type SubmitMissionRequest struct {
	Input string `json:"input" binding:"required"`
}

// ReviewMissionRequest is the admin decision on a manual mission
type ReviewMissionRequest struct {
	Approve bool `json:"approve"`
}

// DefaultRewardDefinitions seeds rewards/definitions when missing
func DefaultRewardDefinitions() []RewardDefinition {
	return []RewardDefinition{
		{ID: "daily_login", Title: "Daily login", Description: "Open the app today", Coins: 5, IsDaily: true, Icon: "📅", Sort: 0},
		{ID: "daily_watch_episode", Title: "Watch an episode", Description: "Watch any episode today", Coins: 10, IsDaily: true, Icon: "🎬", Sort: 10},
		{ID: "daily_share_series", Title: "Share a series", Description: "Share a community series", Coins: 10, IsDaily: true, Icon: "📤", Sort: 20},
		{ID: "perm_complete_profile", Title: "Complete profile", Description: "Add a name and a photo", Coins: 20, Icon: "👤", Sort: 30},
		{ID: "perm_follow_instagram", Title: "Follow us on Instagram", Description: "Send your @ so we can confirm", Coins: 50,
			RequiresManualApprove: true, InputLabel: "Your Instagram @", InputPlaceholder: "@yourname", Icon: "📸", Sort: 40},
		{ID: "perm_review_store", Title: "Review the app", Description: "Send the link to your review", Coins: 50,
			RequiresManualApprove: true, InputLabel: "Review link", InputPlaceholder: "https://", Icon: "⭐", Sort: 50},
	}
}

// DefaultRewardShop seeds rewards/shop when missing
func DefaultRewardShop() []RewardShopItem {
	return []RewardShopItem{
		{ID: "vip_1d", Title: "VIP 1 day", Description: "Unlock VIP dramas for a day", CostCoins: 60, VipDays: 1, Sort: 10},
		{ID: "vip_7d", Title: "VIP 7 days", Description: "A full week of VIP", CostCoins: 350, VipDays: 7, Sort: 20},
		{ID: "vip_30d", Title: "VIP 30 days", Description: "A month of VIP", CostCoins: 1200, VipDays: 30, Sort: 30},
	}
}
