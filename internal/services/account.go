// ===============================
// internal/services/account.go - Register, login and password reset
// ===============================

package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/identity"
	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
)

// Authenticator is the email/password provider, identity.Client in production
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*identity.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*identity.AuthResult, error)
	SendPasswordReset(ctx context.Context, email string) error
}

type AccountService struct {
	auth       Authenticator
	store      rtdb.Store
	profiles   *ProfileService
	affiliates *AffiliateService
	now        func() time.Time
}

func NewAccountService(auth Authenticator, store rtdb.Store, profiles *ProfileService, affiliates *AffiliateService) *AccountService {
	return &AccountService{auth: auth, store: store, profiles: profiles, affiliates: affiliates, now: time.Now}
}

// Register creates the account and its free profile, then tries to credit
// the affiliate who referred the email. A failed referral never fails the
// registration.
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	pendingCode := ExtractRefCode(req.Ref)

	result, err := s.auth.SignUp(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	if result.Email != "" {
		email = result.Email
	}

	profile := &models.UserProfile{Email: email, Name: name, Plan: models.PlanFree}
	if err := s.profiles.UpsertProfile(ctx, result.LocalID, profile); err != nil {
		return nil, err
	}

	resp := &models.AuthResponse{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		UserID:       result.LocalID,
		Email:        email,
		Profile:      profile,
	}
	resp.Affiliate = s.confirmReferral(ctx, result.LocalID, email, pendingCode)

	log.Printf("✅ Registered %s", result.LocalID)
	return resp, nil
}

func (s *AccountService) confirmReferral(ctx context.Context, userID, email, pendingCode string) *models.ConfirmResult {
	source := models.LeadSourceLink
	code := pendingCode
	if code == "" {
		source = models.LeadSourceEmailScan
		found, err := s.affiliates.FindCodeByEmail(ctx, email)
		if err != nil {
			log.Printf("⚠️ Referral scan failed for %s: %v", userID, err)
			return nil
		}
		code = found
	}
	if code == "" {
		return nil
	}

	res, err := s.affiliates.ConfirmLeadOnRegister(ctx, code, email, userID)
	if err != nil {
		log.Printf("⚠️ Referral confirmation failed for %s: %v", userID, err)
		if res == nil {
			res = &models.ConfirmResult{Code: code, Message: err.Error()}
		}
	}

	debug := map[string]interface{}{
		"confirmOk":   res.OK,
		"confirmMsg":  res.Message,
		"source":      source,
		"debugCode":   code,
		"debugAtUnix": s.now().Unix(),
	}
	if err := s.store.Update(ctx, userAffiliatePath(userID), debug); err != nil {
		log.Printf("⚠️ Failed to store referral markers for %s: %v", userID, err)
	}
	return res
}

// Login signs in and returns the profile, creating one for accounts made
// outside the app
func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	result, err := s.auth.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	if result.Email != "" {
		email = result.Email
	}

	profile, err := s.profiles.EnsureProfile(ctx, result.LocalID, email, "")
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		UserID:       result.LocalID,
		Email:        email,
		Profile:      profile,
	}, nil
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.auth.SendPasswordReset(ctx, email)
}
