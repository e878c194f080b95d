// ===============================
// internal/services/affiliate.go - Referral codes, leads and bonuses
// ===============================

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
)

const (
	affiliateCodeLength   = 8
	affiliateCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	affiliateCodeAttempts = 10
)

var errCodeTaken = errors.New("affiliate code taken")

type AffiliateService struct {
	store      rtdb.Store
	wallet     *WalletService
	notifier   Notifier
	landingURL string
	now        func() time.Time
	newCode    func() string
}

func NewAffiliateService(store rtdb.Store, wallet *WalletService, notifier Notifier, landingURL string) *AffiliateService {
	return &AffiliateService{
		store:      store,
		wallet:     wallet,
		notifier:   notifierOrNoop(notifier),
		landingURL: strings.TrimSpace(landingURL),
		now:        time.Now,
		newCode:    randomCode,
	}
}

func randomCode() string {
	b := make([]byte, affiliateCodeLength)
	for i := range b {
		b[i] = affiliateCodeAlphabet[rand.IntN(len(affiliateCodeAlphabet))]
	}
	return string(b)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureAffiliate returns the user's code, allocating one on first use
func (s *AffiliateService) EnsureAffiliate(ctx context.Context, userID string) (string, error) {
	var current models.UserAffiliate
	if err := s.store.Get(ctx, userAffiliatePath(userID), &current); err != nil {
		return "", err
	}
	if code := normalizeCode(current.Code); code != "" {
		return code, nil
	}

	for attempt := 0; attempt < affiliateCodeAttempts; attempt++ {
		code := s.newCode()
		err := s.store.Transaction(ctx, rtdb.Join(affiliateCodesRoot, code), func(node rtdb.Node) (interface{}, error) {
			var existing models.AffiliateCode
			if err := node.Unmarshal(&existing); err != nil {
				return nil, err
			}
			if existing.UID != "" && existing.UID != userID {
				return nil, errCodeTaken
			}
			return models.AffiliateCode{UID: userID, CreatedAtUnix: s.now().Unix()}, nil
		})
		if errors.Is(err, errCodeTaken) {
			continue
		}
		if err != nil {
			return "", err
		}

		if err := s.store.Set(ctx, rtdb.Join(userAffiliatePath(userID), "code"), code); err != nil {
			return "", err
		}
		log.Printf("🔗 Affiliate code %s allocated to %s", code, userID)
		return code, nil
	}
	return "", fmt.Errorf("could not allocate an affiliate code after %d attempts", affiliateCodeAttempts)
}

// LandingLink is the shareable landing page URL for a code
func (s *AffiliateService) LandingLink(code string) string {
	code = normalizeCode(code)
	if code == "" || s.landingURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(s.landingURL, "?") {
		sep = "&"
	}
	return s.landingURL + sep + "ref=" + url.QueryEscape(code)
}

func (s *AffiliateService) bucket(ctx context.Context, code string) (map[string]models.AffiliateLead, error) {
	var leads map[string]models.AffiliateLead
	if err := s.store.Get(ctx, rtdb.Join(affiliateLeadsRoot, code), &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// Summary is the affiliates screen: pending leads count as clicks,
// confirmed ones as signups
func (s *AffiliateService) Summary(ctx context.Context, userID string) (*models.AffiliateSummary, error) {
	code, err := s.EnsureAffiliate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats models.AffiliateStats
	if err := s.store.Get(ctx, rtdb.Join(affiliateStatsRoot, userID), &stats); err != nil {
		return nil, err
	}
	leads, err := s.bucket(ctx, code)
	if err != nil {
		return nil, err
	}

	summary := &models.AffiliateSummary{
		Code:       code,
		Link:       s.LandingLink(code),
		BonusCoins: stats.BonusCoins,
		Signups:    stats.Signups,
	}
	for _, l := range leads {
		switch {
		case strings.EqualFold(strings.TrimSpace(l.Status), models.LeadConfirmed):
			summary.Confirmed++
		case l.Status == "" || strings.EqualFold(strings.TrimSpace(l.Status), models.LeadPending):
			summary.Clicks++
		}
	}
	return summary, nil
}

// ExtractRefCode pulls a code out of a shared link: the ref query value,
// else the last path segment, else the raw text
func ExtractRefCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil {
		if ref := strings.TrimSpace(u.Query().Get("ref")); ref != "" {
			return normalizeCode(ref)
		}
		if u.Scheme != "" || strings.Contains(u.Path, "/") {
			path := strings.Trim(u.Path, "/")
			if i := strings.LastIndex(path, "/"); i >= 0 {
				path = path[i+1:]
			}
			if path != "" && !strings.Contains(path, ".") {
				return normalizeCode(path)
			}
		}
	}
	return normalizeCode(raw)
}

func (s *AffiliateService) codeOwner(ctx context.Context, code string) (string, error) {
	if !rtdb.ValidKey(code) {
		return "", nil
	}
	var owner models.AffiliateCode
	if err := s.store.Get(ctx, rtdb.Join(affiliateCodesRoot, code), &owner); err != nil {
		return "", err
	}
	return owner.UID, nil
}

// CaptureLead records a landing page visit. Repeated visits with the same
// email keep the existing pending lead.
func (s *AffiliateService) CaptureLead(ctx context.Context, ref, email string) (string, bool, error) {
	code := ExtractRefCode(ref)
	owner, err := s.codeOwner(ctx, code)
	if err != nil {
		return "", false, err
	}
	if owner == "" {
		return "", false, ErrUnknownCode
	}

	emailLower := normalizeEmail(email)
	if _, err := mail.ParseAddress(emailLower); err != nil {
		return "", false, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	leads, err := s.bucket(ctx, code)
	if err != nil {
		return "", false, err
	}
	if key, _, ok := oldestPending(leads, emailLower); ok {
		return key, false, nil
	}

	key, err := s.store.Push(ctx, rtdb.Join(affiliateLeadsRoot, code), models.AffiliateLead{
		EmailLower:    emailLower,
		Status:        models.LeadPending,
		CreatedAtUnix: s.now().Unix(),
	})
	if err != nil {
		return "", false, err
	}
	log.Printf("🧲 Lead captured for %s", code)
	return key, true, nil
}

func oldestPending(leads map[string]models.AffiliateLead, emailLower string) (string, models.AffiliateLead, bool) {
	var (
		bestKey string
		best    models.AffiliateLead
		found   bool
	)
	for key, l := range leads {
		status := strings.TrimSpace(l.Status)
		if status != "" && !strings.EqualFold(status, models.LeadPending) {
			continue
		}
		if normalizeEmail(l.EmailLower) != emailLower {
			continue
		}
		if !found || l.CreatedAtUnix < best.CreatedAtUnix ||
			(l.CreatedAtUnix == best.CreatedAtUnix && key < bestKey) {
			bestKey, best, found = key, l, true
		}
	}
	return bestKey, best, found
}

// FindCodeByEmail scans every bucket for the oldest pending lead of an email
func (s *AffiliateService) FindCodeByEmail(ctx context.Context, email string) (string, error) {
	emailLower := normalizeEmail(email)
	if emailLower == "" {
		return "", nil
	}

	var all map[string]map[string]models.AffiliateLead
	if err := s.store.Get(ctx, affiliateLeadsRoot, &all); err != nil {
		return "", err
	}

	codes := make([]string, 0, len(all))
	for code := range all {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var (
		bestCode string
		bestAt   int64
	)
	for _, code := range codes {
		if _, lead, ok := oldestPending(all[code], emailLower); ok {
			if bestCode == "" || lead.CreatedAtUnix < bestAt {
				bestCode, bestAt = normalizeCode(code), lead.CreatedAtUnix
			}
		}
	}
	return bestCode, nil
}

// ConfirmLeadOnRegister converts a pending lead into a signup and pays the
// code owner. Business failures come back as a result with OK false, the
// error is reserved for storage failures and self-referral. When a step after
// claiming the lead fails, earlier steps are undone and the lead goes back to
// pending so the next attempt can pick it up.
func (s *AffiliateService) ConfirmLeadOnRegister(ctx context.Context, code, email, newUserID string) (*models.ConfirmResult, error) {
	code = normalizeCode(code)
	res := &models.ConfirmResult{Code: code}

	owner, err := s.codeOwner(ctx, code)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		res.Message = "Unknown affiliate code."
		return res, nil
	}
	res.OwnerUID = owner
	if owner == newUserID {
		res.Message = "You cannot use your own affiliate code."
		return res, ErrSelfReferral
	}

	emailLower := normalizeEmail(email)
	leads, err := s.bucket(ctx, code)
	if err != nil {
		return nil, err
	}
	leadKey, _, ok := oldestPending(leads, emailLower)
	if !ok {
		res.Message = "No pending lead for this email."
		return res, nil
	}
	res.LeadKey = leadKey

	now := s.now().Unix()
	leadPath := rtdb.Join(affiliateLeadsRoot, code, leadKey)
	err = s.store.Transaction(ctx, leadPath, func(node rtdb.Node) (interface{}, error) {
		var lead models.AffiliateLead
		if err := node.Unmarshal(&lead); err != nil {
			return nil, err
		}
		if strings.EqualFold(lead.Status, models.LeadConfirmed) {
			return nil, ErrAlreadyDone
		}
		lead.Status = models.LeadConfirmed
		lead.ConfirmedUID = newUserID
		lead.ConfirmedAtUnix = now
		return lead, nil
	})
	if errors.Is(err, ErrAlreadyDone) {
		res.Message = "Lead already confirmed."
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	var undo []func() error
	fail := func(err error) (*models.ConfirmResult, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			if uerr := undo[i](); uerr != nil {
				log.Printf("❌ Rollback of lead %s/%s failed: %v", code, leadKey, uerr)
			}
		}
		if uerr := s.releaseLead(ctx, leadPath, newUserID); uerr != nil {
			log.Printf("❌ Lead %s/%s stuck as confirmed: %v", code, leadKey, uerr)
		}
		return nil, err
	}

	bonus := max(s.royalty(ctx).CoinsPerConfirmedSignup, 0)
	statsPath := rtdb.Join(affiliateStatsRoot, owner)
	bumpStats := func(sign int64) error {
		return s.store.Transaction(ctx, statsPath, func(node rtdb.Node) (interface{}, error) {
			var stats models.AffiliateStats
			if err := node.Unmarshal(&stats); err != nil {
				return nil, err
			}
			stats.Signups = max(stats.Signups+sign, 0)
			stats.BonusCoins = max(stats.BonusCoins+sign*bonus, 0)
			stats.UpdatedAtUnix = now
			return stats, nil
		})
	}
	if err := bumpStats(1); err != nil {
		return fail(err)
	}
	undo = append(undo, func() error { return bumpStats(-1) })

	referredByPath := rtdb.Join(userAffiliatePath(newUserID), "referredBy")
	if err := s.store.Set(ctx, referredByPath, owner); err != nil {
		return fail(err)
	}
	undo = append(undo, func() error { return s.store.Delete(ctx, referredByPath) })

	if bonus > 0 {
		ref := "lead:" + code + ":" + leadKey
		if _, err := s.wallet.Credit(ctx, owner, bonus, models.TxAffiliateBonus, "Referral signup bonus", ref); err != nil {
			return fail(err)
		}
		res.BonusCoins = bonus
	}

	s.notifier.NotifyUser(owner, EventLeadConfirmed, map[string]interface{}{
		"code":       code,
		"bonusCoins": bonus,
	})
	log.Printf("🤝 Lead %s/%s confirmed for %s", code, leadKey, newUserID)

	res.OK = true
	res.Message = "OK"
	return res, nil
}

// releaseLead puts a lead claimed by userID back to pending
func (s *AffiliateService) releaseLead(ctx context.Context, leadPath, userID string) error {
	return s.store.Transaction(ctx, leadPath, func(node rtdb.Node) (interface{}, error) {
		var lead models.AffiliateLead
		if err := node.Unmarshal(&lead); err != nil {
			return nil, err
		}
		if lead.ConfirmedUID == userID {
			lead.Status = models.LeadPending
			lead.ConfirmedUID = ""
			lead.ConfirmedAtUnix = 0
		}
		return lead, nil
	})
}

func (s *AffiliateService) royalty(ctx context.Context) models.AffiliateRoyaltyConfig {
	cfg := models.DefaultAffiliateRoyaltyConfig()
	var stored *models.AffiliateRoyaltyConfig
	if err := s.store.Get(ctx, affiliateRoyaltyPath, &stored); err != nil {
		log.Printf("⚠️ Affiliate royalty config unavailable, using defaults: %v", err)
		return cfg
	}
	if stored != nil && stored.CoinsPerConfirmedSignup > 0 {
		cfg.CoinsPerConfirmedSignup = stored.CoinsPerConfirmedSignup
		cfg.ReaisPerConfirmedSignup = stored.ReaisPerConfirmedSignup
	}
	return cfg
}
