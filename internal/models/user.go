// ===============================
// internal/models/user.go - User Profile Model
// ===============================

package models

import (
	"strings"
	"time"
)

// Plans
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// PremiumMonthlyPrice is shown on the upgrade screen, no payment is taken
const PremiumMonthlyPrice = 29.90

// UserProfile is stored at users/{uid}/profile
type UserProfile struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	PhotoURL         string `json:"photoUrl"`
	Plan             string `json:"plan"`
	PremiumUntilUnix int64  `json:"premiumUntilUnix"`
	CreatedAtUnix    int64  `json:"createdAtUnix"`
}

func (p *UserProfile) IsPremium() bool {
	return strings.EqualFold(p.Plan, PlanPremium)
}

// PremiumActive reports whether the premium plan is still valid at now.
// A premium plan without expiry never lapses.
func (p *UserProfile) PremiumActive(now time.Time) bool {
	if !p.IsPremium() {
		return false
	}
	return p.PremiumUntilUnix <= 0 || p.PremiumUntilUnix > now.Unix()
}

// DisplayName falls back to the local part of the email
func (p *UserProfile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return NameFromEmail(p.Email)
}

// NameFromEmail returns the part before @, or "User"
func NameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	if email != "" {
		return email
	}
	return "User"
}

// ProfileStats feeds the profile header counters
type ProfileStats struct {
	LikesReceived     int64  `json:"likesReceived"`
	LikesLabel        string `json:"likesLabel"`
	SeriesPublished   int    `json:"seriesPublished"`
	EpisodesPublished int    `json:"episodesPublished"`
	Saved             int    `json:"saved"`
}

// UpdateProfileRequest is the editable part of the profile
type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"required"`
	PhotoURL string `json:"photoUrl"`
}

// ChangePlanRequest selects free or premium on the upgrade screen
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// RegisterRequest creates an account. Ref is a code or a shared link.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Ref      string `json:"ref"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	IDToken      string         `json:"idToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    string         `json:"expiresIn"`
	UserID       string         `json:"userId"`
	Email        string         `json:"email"`
	Profile      *UserProfile   `json:"profile"`
	Affiliate    *ConfirmResult `json:"affiliate,omitempty"`
}
