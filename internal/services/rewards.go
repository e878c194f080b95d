// ===============================
// internal/services/rewards.go - Check-in, missions and the VIP shop
// ===============================

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
)

const (
	dateKeyLayout = "20060102"
	secondsPerDay = 86400
)

// Missions driven by other screens, never listed
var hiddenMissions = map[string]bool{
	"daily_login":           true,
	"perm_complete_profile": true,
}

type RewardsService struct {
	store    rtdb.Store
	wallet   *WalletService
	profiles *ProfileService
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewRewardsService(store rtdb.Store, wallet *WalletService, profiles *ProfileService, notifier Notifier, loc *time.Location) *RewardsService {
	if loc == nil {
		loc = time.UTC
	}
	return &RewardsService{
		store:    store,
		wallet:   wallet,
		profiles: profiles,
		notifier: notifierOrNoop(notifier),
		loc:      loc,
		now:      time.Now,
	}
}

func (s *RewardsService) dateKey(t time.Time) string {
	return t.In(s.loc).Format(dateKeyLayout)
}

func (s *RewardsService) todayKey() string {
	return s.dateKey(s.now())
}

func (s *RewardsService) yesterdayKey() string {
	return s.dateKey(s.now().In(s.loc).AddDate(0, 0, -1))
}

// ===============================
// CHECK-IN
// ===============================

func cycleDay(streak int) int {
	if streak <= 0 {
		return 0
	}
	return ((streak - 1) % models.CheckinCycleDays) + 1
}

// TryDailyCheckin counts today once. A check-in yesterday continues the
// streak, anything older starts over at 1. Day 7 of a cycle grants VIP,
// the other days grant coins.
func (s *RewardsService) TryDailyCheckin(ctx context.Context, userID string) (*models.CheckinResult, error) {
	today, yesterday := s.todayKey(), s.yesterdayKey()

	var (
		prev, state models.RewardCheckin
		applied     bool
	)
	err := s.store.Transaction(ctx, checkinPath(userID), func(current rtdb.Node) (interface{}, error) {
		var c models.RewardCheckin
		if err := current.Unmarshal(&c); err != nil {
			return nil, err
		}
		prev, applied = c, false
		if c.LastDateKey == today {
			state = c
			return c, nil
		}
		if c.LastDateKey == yesterday && c.Streak > 0 {
			c.Streak++
		} else {
			c.Streak = 1
		}
		c.LastDateKey = today
		c.UpdatedAtUnix = s.now().Unix()
		state, applied = c, true
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.CheckinResult{Applied: applied, Streak: state.Streak, Checkin: state}
	if !applied {
		return result, nil
	}

	day := cycleDay(state.Streak)
	ref := "checkin:" + today
	if day == models.CheckinCycleDays {
		if _, err := s.grantVipDays(ctx, userID, models.CheckinVipDays); err != nil {
			s.undoCheckin(ctx, userID, state, prev)
			return nil, err
		}
		result.Reward, result.Amount = "vip", models.CheckinVipDays
	} else {
		desc := fmt.Sprintf("Daily check-in, day %d", day)
		if _, err := s.wallet.Credit(ctx, userID, models.CheckinDailyCoins, models.TxCheckin, desc, ref); err != nil {
			s.undoCheckin(ctx, userID, state, prev)
			return nil, err
		}
		result.Reward, result.Amount = "coins", models.CheckinDailyCoins
	}

	claim := models.RewardClaim{Done: true, Coins: 0, AtUnix: s.now().Unix()}
	if result.Reward == "coins" {
		claim.Coins = result.Amount
	}
	if err := s.store.Set(ctx, rtdb.Join(dailyClaimsPath(userID, today), "daily_login"), claim); err != nil {
		log.Printf("⚠️ Failed to mark daily_login for %s: %v", userID, err)
	}

	s.notifier.NotifyUser(userID, EventCheckinApplied, map[string]interface{}{
		"streak": state.Streak,
		"reward": result.Reward,
		"amount": result.Amount,
	})
	log.Printf("📅 Check-in %s for %s, streak %d", today, userID, state.Streak)
	return result, nil
}

// undoCheckin restores the streak when the day's reward could not be paid,
// unless another check-in has moved it since
func (s *RewardsService) undoCheckin(ctx context.Context, userID string, applied, prev models.RewardCheckin) {
	err := s.store.Transaction(ctx, checkinPath(userID), func(current rtdb.Node) (interface{}, error) {
		var c models.RewardCheckin
		if err := current.Unmarshal(&c); err != nil {
			return nil, err
		}
		if c != applied {
			return c, nil
		}
		if prev == (models.RewardCheckin{}) {
			return nil, nil
		}
		return prev, nil
	})
	if err != nil {
		log.Printf("❌ Check-in rollback for %s failed: %v", userID, err)
	}
}

// CheckinView lays out the current 7-day page of the streak
func (s *RewardsService) CheckinView(ctx context.Context, userID string) (*models.CheckinView, error) {
	var c models.RewardCheckin
	if err := s.store.Get(ctx, checkinPath(userID), &c); err != nil {
		return nil, err
	}
	return buildCheckinView(c, s.todayKey()), nil
}

func buildCheckinView(c models.RewardCheckin, today string) *models.CheckinView {
	streak := max(c.Streak, 0)
	base := ((max(streak, 1)-1)/models.CheckinCycleDays)*models.CheckinCycleDays + 1

	view := &models.CheckinView{
		Streak:    streak,
		DidToday:  c.LastDateKey == today,
		BaseStart: base,
		Days:      make([]models.CheckinDay, 0, models.CheckinCycleDays),
	}
	for i := 0; i < models.CheckinCycleDays; i++ {
		day := base + i
		slot := models.CheckinDay{Day: day, Reward: "coins", Amount: models.CheckinDailyCoins, Completed: day <= streak}
		if cycleDay(day) == models.CheckinCycleDays {
			slot.Reward, slot.Amount = "vip", models.CheckinVipDays
		}
		view.Days = append(view.Days, slot)
	}
	return view
}

// ===============================
// VIP
// ===============================

// EnsurePremiumConsistency expires lapsed premium plans and restores premium
// for users whose paid time is still running
func (s *RewardsService) EnsurePremiumConsistency(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil || profile == nil {
		return profile, err
	}

	now := s.now().Unix()
	values := map[string]interface{}{}
	switch {
	case profile.IsPremium() && profile.PremiumUntilUnix > 0 && profile.PremiumUntilUnix <= now:
		values["plan"], values["premiumUntilUnix"] = models.PlanFree, 0
		profile.Plan, profile.PremiumUntilUnix = models.PlanFree, 0
	case !profile.IsPremium() && profile.PremiumUntilUnix > now:
		values["plan"] = models.PlanPremium
		profile.Plan = models.PlanPremium
	default:
		return profile, nil
	}

	if err := s.store.Update(ctx, profilePath(userID), values); err != nil {
		return nil, err
	}
	log.Printf("👑 Plan for %s corrected to %s", userID, profile.Plan)
	return profile, nil
}

// VipDaysRemaining renders the badge: "0d", "∞" or whole days left rounded up
func (s *RewardsService) VipDaysRemaining(ctx context.Context, userID string) (string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return "0d", err
	}
	return vipLabel(profile, s.now().Unix()), nil
}

func vipLabel(profile *models.UserProfile, now int64) string {
	if profile == nil || !profile.IsPremium() {
		return "0d"
	}
	if profile.PremiumUntilUnix <= 0 {
		return "∞"
	}
	if profile.PremiumUntilUnix <= now {
		return "0d"
	}
	days := int(math.Ceil(float64(profile.PremiumUntilUnix-now) / secondsPerDay))
	return fmt.Sprintf("%dd", max(days, 0))
}

// grantVipDays extends premium from whichever is later, now or the current
// expiry. A premium plan without expiry stays unlimited.
func (s *RewardsService) grantVipDays(ctx context.Context, userID string, days int) (*models.UserProfile, error) {
	var out models.UserProfile
	now := s.now().Unix()

	err := s.store.Transaction(ctx, profilePath(userID), func(current rtdb.Node) (interface{}, error) {
		var p models.UserProfile
		if err := current.Unmarshal(&p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			p.UserID = userID
		}
		if p.CreatedAtUnix == 0 {
			p.CreatedAtUnix = now
		}
		unlimited := p.IsPremium() && p.PremiumUntilUnix <= 0
		if !unlimited {
			p.PremiumUntilUnix = max(now, p.PremiumUntilUnix) + int64(days)*secondsPerDay
		}
		p.Plan = models.PlanPremium
		out = p
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ===============================
// CATALOG
// ===============================

// EnsureCatalogDefaults seeds missing mission definitions and shop items
// without touching ones an admin already edited
func (s *RewardsService) EnsureCatalogDefaults(ctx context.Context) error {
	var (
		defs map[string]map[string]interface{}
		shop map[string]map[string]interface{}
	)
	if err := s.store.Get(ctx, rewardDefinitionsPath, &defs); err != nil {
		return err
	}
	if err := s.store.Get(ctx, rewardShopPath, &shop); err != nil {
		return err
	}

	missing := map[string]interface{}{}
	for _, d := range models.DefaultRewardDefinitions() {
		if _, ok := defs[d.ID]; !ok {
			missing[rtdb.Join(rewardDefinitionsPath, d.ID)] = d
		}
	}
	for _, it := range models.DefaultRewardShop() {
		if _, ok := shop[it.ID]; !ok {
			missing[rtdb.Join(rewardShopPath, it.ID)] = it
		}
	}
	if len(missing) == 0 {
		return nil
	}

	log.Printf("🎁 Seeding %d reward catalog entries", len(missing))
	return s.store.Update(ctx, "", missing)
}

func (s *RewardsService) definitions(ctx context.Context) (map[string]models.RewardDefinition, error) {
	var all map[string]models.RewardDefinition
	if err := s.store.Get(ctx, rewardDefinitionsPath, &all); err != nil {
		return nil, err
	}
	out := make(map[string]models.RewardDefinition, len(all))
	for id, d := range all {
		if !d.Active() {
			continue
		}
		if d.ID == "" {
			d.ID = id
		}
		out[id] = d
	}
	return out, nil
}

func (s *RewardsService) definition(ctx context.Context, missionID string) (*models.RewardDefinition, error) {
	if !rtdb.ValidKey(missionID) {
		return nil, ErrNotFound
	}
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := defs[missionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *RewardsService) claimPath(userID string, def *models.RewardDefinition, dateKey string) string {
	if def.IsDaily {
		return rtdb.Join(dailyClaimsPath(userID, dateKey), def.ID)
	}
	return rtdb.Join(permanentClaimsPath(userID), def.ID)
}

// ===============================
// MISSIONS
// ===============================

// Missions lists visible missions with the caller's state
func (s *RewardsService) Missions(ctx context.Context, userID string) ([]models.MissionView, error) {
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, err
	}

	var (
		daily   map[string]models.RewardClaim
		perm    map[string]models.RewardClaim
		pending map[string]models.RewardPendingManual
	)
	if err := s.store.Get(ctx, dailyClaimsPath(userID, s.todayKey()), &daily); err != nil {
		return nil, err
	}
	if err := s.store.Get(ctx, permanentClaimsPath(userID), &perm); err != nil {
		return nil, err
	}
	if err := s.store.Get(ctx, manualMissionsPath(userID), &pending); err != nil {
		return nil, err
	}

	missions := make([]models.MissionView, 0, len(defs))
	for id, d := range defs {
		if hiddenMissions[id] {
			continue
		}
		claim := perm[id]
		if d.IsDaily {
			claim = daily[id]
		}

		state := models.MissionClaim
		switch {
		case claim.Done:
			state = models.MissionDone
		case d.RequiresManualApprove && strings.EqualFold(pending[id].Status, models.ManualPending):
			state = models.MissionPending
		case d.RequiresManualApprove:
			state = models.MissionSend
		}
		if d.Icon == "" {
			d.Icon = "⭐"
		}
		missions = append(missions, models.MissionView{RewardDefinition: d, State: state})
	}

	sort.SliceStable(missions, func(i, j int) bool {
		if missions[i].Sort != missions[j].Sort {
			return missions[i].Sort < missions[j].Sort
		}
		return missions[i].Title < missions[j].Title
	})
	return missions, nil
}

// markClaimed writes the claim once, ErrAlreadyDone when it already exists
func (s *RewardsService) markClaimed(ctx context.Context, path string, coins int64) error {
	return s.store.Transaction(ctx, path, func(current rtdb.Node) (interface{}, error) {
		var c models.RewardClaim
		if err := current.Unmarshal(&c); err != nil {
			return nil, err
		}
		if c.Done {
			return nil, ErrAlreadyDone
		}
		return models.RewardClaim{Done: true, Coins: coins, AtUnix: s.now().Unix()}, nil
	})
}

// claimAndCredit writes the claim then pays it. A failed payment removes the
// claim again so the mission stays claimable.
func (s *RewardsService) claimAndCredit(ctx context.Context, userID, path string, coins int64, txType, desc, ref string) error {
	if err := s.markClaimed(ctx, path, coins); err != nil {
		return err
	}
	if coins <= 0 {
		return nil
	}
	if _, err := s.wallet.Credit(ctx, userID, coins, txType, desc, ref); err != nil {
		if derr := s.store.Delete(ctx, path); derr != nil {
			log.Printf("❌ Claim %s kept without payment: %v", path, derr)
		}
		return err
	}
	return nil
}

// CompleteMission claims an automatic mission and credits its coins.
// Returns the new balance.
func (s *RewardsService) CompleteMission(ctx context.Context, userID, missionID string) (int64, error) {
	def, err := s.definition(ctx, missionID)
	if err != nil {
		return 0, err
	}
	if def.RequiresManualApprove {
		return 0, ErrManualApproval
	}

	today := s.todayKey()
	ref := "mission:" + def.ID
	if def.IsDaily {
		ref += ":" + today
	}
	if err := s.claimAndCredit(ctx, userID, s.claimPath(userID, def, today), def.Coins, models.TxMission, def.Title, ref); err != nil {
		return 0, err
	}
	return s.wallet.GetCoins(ctx, userID)
}

// SubmitManualMission queues a handle or link for admin review
func (s *RewardsService) SubmitManualMission(ctx context.Context, userID, missionID, input string) error {
	def, err := s.definition(ctx, missionID)
	if err != nil {
		return err
	}
	if !def.RequiresManualApprove {
		return fmt.Errorf("%w: mission is claimed directly", ErrInvalidInput)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("%w: input is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input) > models.ManualInputMaxLen {
		return fmt.Errorf("%w: input longer than %d characters", ErrInvalidInput, models.ManualInputMaxLen)
	}

	today := s.todayKey()
	var claim models.RewardClaim
	if err := s.store.Get(ctx, s.claimPath(userID, def, today), &claim); err != nil {
		return err
	}
	if claim.Done {
		return ErrAlreadyDone
	}

	var existing *models.RewardPendingManual
	if err := s.store.Get(ctx, rtdb.Join(manualMissionsPath(userID), missionID), &existing); err != nil {
		return err
	}
	if existing != nil && (existing.Status == models.ManualPending || existing.Status == models.ManualApproved) {
		return ErrAlreadyDone
	}

	pending := models.RewardPendingManual{
		Status:          models.ManualPending,
		Input:           input,
		IsDaily:         def.IsDaily,
		SubmittedAtUnix: s.now().Unix(),
	}
	if def.IsDaily {
		pending.DateKey = today
	}
	if err := s.store.Set(ctx, rtdb.Join(manualMissionsPath(userID), missionID), pending); err != nil {
		return err
	}

	log.Printf("📨 Manual mission %s submitted by %s", missionID, userID)
	return nil
}

// ReviewManualMission approves or rejects a pending submission. Approved
// missions are credited right away.
func (s *RewardsService) ReviewManualMission(ctx context.Context, userID, missionID string, approve bool) error {
	if !rtdb.ValidKey(missionID) {
		return ErrNotFound
	}
	path := rtdb.Join(manualMissionsPath(userID), missionID)

	var pending *models.RewardPendingManual
	if err := s.store.Get(ctx, path, &pending); err != nil {
		return err
	}
	if pending == nil {
		return ErrNotFound
	}
	if pending.Status != models.ManualPending {
		return ErrAlreadyDone
	}

	status := models.ManualRejected
	if approve {
		status = models.ManualApproved
	}
	err := s.store.Update(ctx, path, map[string]interface{}{
		"status":         status,
		"reviewedAtUnix": s.now().Unix(),
	})
	if err != nil {
		return err
	}

	s.notifier.NotifyUser(userID, EventMissionUpdated, map[string]interface{}{
		"missionId": missionID,
		"status":    status,
	})

	if approve {
		if _, err := s.SyncApprovedManualMissions(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// SyncApprovedManualMissions credits approved submissions and marks them
// credited. Returns how many were credited.
func (s *RewardsService) SyncApprovedManualMissions(ctx context.Context, userID string) (int, error) {
	var pending map[string]models.RewardPendingManual
	if err := s.store.Get(ctx, manualMissionsPath(userID), &pending); err != nil {
		return 0, err
	}

	credited := 0
	for missionID, p := range pending {
		if !strings.EqualFold(p.Status, models.ManualApproved) {
			continue
		}
		def, err := s.definition(ctx, missionID)
		if err != nil {
			log.Printf("⚠️ Approved mission %s for %s has no definition: %v", missionID, userID, err)
			continue
		}

		dateKey := p.DateKey
		if dateKey == "" {
			dateKey = s.todayKey()
		}
		err = s.claimAndCredit(ctx, userID, s.claimPath(userID, def, dateKey), def.Coins, models.TxManualMission, def.Title, "manual:"+missionID)
		switch {
		case err == nil:
			credited++
		case !errors.Is(err, ErrAlreadyDone):
			return credited, err
		}

		if err := s.store.Set(ctx, rtdb.Join(manualMissionsPath(userID), missionID, "status"), models.ManualCredited); err != nil {
			return credited, err
		}
	}
	return credited, nil
}

// ===============================
// SHOP
// ===============================

// Shop lists enabled items ordered by sort then cost
func (s *RewardsService) Shop(ctx context.Context) ([]models.RewardShopItem, error) {
	var all map[string]models.RewardShopItem
	if err := s.store.Get(ctx, rewardShopPath, &all); err != nil {
		return nil, err
	}

	items := make([]models.RewardShopItem, 0, len(all))
	for id, it := range all {
		if !it.Active() {
			continue
		}
		if it.ID == "" {
			it.ID = id
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Sort != items[j].Sort {
			return items[i].Sort < items[j].Sort
		}
		if items[i].CostCoins != items[j].CostCoins {
			return items[i].CostCoins < items[j].CostCoins
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// BuyVip trades coins for VIP days
func (s *RewardsService) BuyVip(ctx context.Context, userID, itemID string) (*models.UserProfile, error) {
	if !rtdb.ValidKey(itemID) {
		return nil, ErrNotFound
	}
	var item *models.RewardShopItem
	if err := s.store.Get(ctx, rtdb.Join(rewardShopPath, itemID), &item); err != nil {
		return nil, err
	}
	if item == nil || !item.Active() {
		return nil, ErrNotFound
	}
	if item.CostCoins <= 0 || item.VipDays <= 0 {
		return nil, fmt.Errorf("%w: shop item %s is misconfigured", ErrInvalidInput, itemID)
	}

	desc := fmt.Sprintf("VIP %d day(s)", item.VipDays)
	if _, err := s.wallet.Debit(ctx, userID, item.CostCoins, models.TxVipPurchase, desc, "shop:"+itemID); err != nil {
		return nil, err
	}

	profile, err := s.grantVipDays(ctx, userID, item.VipDays)
	if err != nil {
		if _, rerr := s.wallet.Credit(ctx, userID, item.CostCoins, models.TxVipPurchase, "Refund "+desc, "shop:"+itemID); rerr != nil {
			log.Printf("❌ Refund of %d coins to %s failed: %v", item.CostCoins, userID, rerr)
		}
		return nil, err
	}

	log.Printf("👑 %s bought %s", userID, itemID)
	return profile, nil
}

// ===============================
// OVERVIEW
// ===============================

// Overview runs the screen-open housekeeping then returns everything shown
func (s *RewardsService) Overview(ctx context.Context, userID string) (*models.RewardsOverview, error) {
	if _, err := s.TryDailyCheckin(ctx, userID); err != nil {
		log.Printf("⚠️ Auto check-in failed for %s: %v", userID, err)
	}
	profile, err := s.EnsurePremiumConsistency(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureCatalogDefaults(ctx); err != nil {
		return nil, err
	}
	if _, err := s.SyncApprovedManualMissions(ctx, userID); err != nil {
		log.Printf("⚠️ Manual mission sync failed for %s: %v", userID, err)
	}

	coins, err := s.wallet.GetCoins(ctx, userID)
	if err != nil {
		return nil, err
	}
	checkin, err := s.CheckinView(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.Missions(ctx, userID)
	if err != nil {
		return nil, err
	}
	shop, err := s.Shop(ctx)
	if err != nil {
		return nil, err
	}

	return &models.RewardsOverview{
		Coins:    coins,
		VipLabel: vipLabel(profile, s.now().Unix()),
		Checkin:  *checkin,
		Missions: missions,
		Shop:     shop,
	}, nil
}
