// ===============================
// internal/models/affiliate.go - Referral Models
// ===============================

package models

// Lead statuses
const (
	LeadPending   = "pending"
	LeadConfirmed = "confirmed"
)

// Lead sources recorded on the new user's affiliate node
const (
	LeadSourceLink      = "pagina.php"
	LeadSourceEmailScan = "email-scan"
)

// AffiliateCode is stored at affiliates/codes/{CODE}
type AffiliateCode struct {
	UID           string `json:"uid"`
	CreatedAtUnix int64  `json:"createdAtUnix"`
}

// UserAffiliate is stored at users/{uid}/affiliate
type UserAffiliate struct {
	Code        string `json:"code,omitempty"`
	ReferredBy  string `json:"referredBy,omitempty"`
	ConfirmOk   bool   `json:"confirmOk,omitempty"`
	ConfirmMsg  string `json:"confirmMsg,omitempty"`
	Source      string `json:"source,omitempty"`
	DebugCode   string `json:"debugCode,omitempty"`
	DebugAtUnix int64  `json:"debugAtUnix,omitempty"`
}

// AffiliateLead is stored at affiliates/leads/{CODE}/{pushId}
type AffiliateLead struct {
	EmailLower      string `json:"emailLower"`
	Status          string `json:"status"`
	CreatedAtUnix   int64  `json:"createdAtUnix"`
	ConfirmedUID    string `json:"confirmedUid,omitempty"`
	ConfirmedAtUnix int64  `json:"confirmedAtUnix,omitempty"`
}

// AffiliateStats is stored at affiliates/stats/{uid}
type AffiliateStats struct {
	Signups       int64 `json:"signups"`
	BonusCoins    int64 `json:"bonusCoins"`
	UpdatedAtUnix int64 `json:"updatedAtUnix"`
}

// AffiliateRoyaltyConfig is stored at affiliates/config/royalty
type AffiliateRoyaltyConfig struct {
	CoinsPerConfirmedSignup int64   `json:"coinsPerConfirmedSignup"`
	ReaisPerConfirmedSignup float64 `json:"reaisPerConfirmedSignup"`
}

func DefaultAffiliateRoyaltyConfig() AffiliateRoyaltyConfig {
	return AffiliateRoyaltyConfig{CoinsPerConfirmedSignup: 50}
}

// AffiliateSummary is the affiliates screen
type AffiliateSummary struct {
	Code       string `json:"code"`
	Link       string `json:"link"`
	BonusCoins int64  `json:"bonusCoins"`
	Signups    int64  `json:"signups"`
	Clicks     int    `json:"clicks"`
	Confirmed  int    `json:"confirmed"`
}

// ConfirmResult describes a lead confirmation attempt
type ConfirmResult struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	OwnerUID   string `json:"ownerUid,omitempty"`
	LeadKey    string `json:"leadKey,omitempty"`
	BonusCoins int64  `json:"bonusCoins,omitempty"`
}

// CaptureLeadRequest is posted by the landing page
type CaptureLeadRequest struct {
	Ref   string `json:"ref" binding:"required"`
	Email string `json:"email" binding:"required"`
}
