package services

import (
	"net/http"
	"testing"

	"github.com/Randomizando3/DramaBoxV2/internal/identity"
	"github.com/Randomizando3/DramaBoxV2/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUpAs(uid string) func(email, password string) (*identity.AuthResult, error) {
	return func(email, _ string) (*identity.AuthResult, error) {
		return &identity.AuthResult{IDToken: "token-" + uid, RefreshToken: "refresh", ExpiresIn: "3600", LocalID: uid, Email: email}, nil
	}
}

func readAffiliateNode(t *testing.T, env *testEnv, uid string) models.UserAffiliate {
	t.Helper()
	var node models.UserAffiliate
	require.NoError(t, env.store.Get(env.ctx, userAffiliatePath(uid), &node))
	return node
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	env.auth.signUp = signUpAs("new")

	_, err := env.accounts.Register(env.ctx, &models.RegisterRequest{Name: " ", Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.accounts.Register(env.ctx, &models.RegisterRequest{Name: "Ana", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterCreatesFreeProfile(t *testing.T) {
	env := newTestEnv(t)
	env.auth.signUp = signUpAs("new")

	resp, err := env.accounts.Register(env.ctx, &models.RegisterRequest{Name: " Ana ", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "new", resp.UserID)
	assert.Equal(t, "token-new", resp.IDToken)
	assert.Nil(t, resp.Affiliate)

	profile, err := env.profiles.GetProfile(env.ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, models.PlanFree, profile.Plan)

	// no code resolved, so no referral markers either
	assert.Empty(t, readAffiliateNode(t, env, "new").Source)
}

func TestRegisterWithRefLinkConfirmsLead(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	_, _, err = env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)

	env.auth.signUp = signUpAs("fan")
	resp, err := env.accounts.Register(env.ctx, &models.RegisterRequest{
		Name: "Fan", Email: "fan@example.com", Password: "secret1",
		Ref: "https://dramabox.example/pagina.php?ref=" + code,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Affiliate)
	assert.True(t, resp.Affiliate.OK)
	assert.Equal(t, int64(50), env.coins(t, "owner"))

	node := readAffiliateNode(t, env, "fan")
	assert.Equal(t, models.LeadSourceLink, node.Source)
	assert.Equal(t, code, node.DebugCode)
	assert.True(t, node.ConfirmOk)
	assert.Equal(t, "OK", node.ConfirmMsg)
	assert.Equal(t, "owner", node.ReferredBy)
	assert.Equal(t, env.now.Unix(), node.DebugAtUnix)
}

func TestRegisterFindsLeadByEmail(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	_, _, err = env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)

	env.auth.signUp = signUpAs("fan")
	resp, err := env.accounts.Register(env.ctx, &models.RegisterRequest{Name: "Fan", Email: "FAN@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Affiliate)
	assert.True(t, resp.Affiliate.OK)

	node := readAffiliateNode(t, env, "fan")
	assert.Equal(t, models.LeadSourceEmailScan, node.Source)
	assert.Equal(t, code, node.DebugCode)
}

func TestRegisterKeepsFailedReferralMarkers(t *testing.T) {
	env := newTestEnv(t)
	env.auth.signUp = signUpAs("fan")

	resp, err := env.accounts.Register(env.ctx, &models.RegisterRequest{Name: "Fan", Email: "fan@example.com", Password: "secret1", Ref: "NOPE2345"})
	require.NoError(t, err)
	require.NotNil(t, resp.Affiliate)
	assert.False(t, resp.Affiliate.OK)

	node := readAffiliateNode(t, env, "fan")
	assert.False(t, node.ConfirmOk)
	assert.Equal(t, "Unknown affiliate code.", node.ConfirmMsg)
	assert.Equal(t, "NOPE2345", node.DebugCode)
}

func TestRegisterPassesIdentityErrors(t *testing.T) {
	env := newTestEnv(t)
	env.auth.signUp = func(string, string) (*identity.AuthResult, error) {
		return nil, &identity.Error{Status: http.StatusBadRequest, Code: "EMAIL_EXISTS", Message: "Email already registered."}
	}

	_, err := env.accounts.Register(env.ctx, &models.RegisterRequest{Name: "Fan", Email: "fan@example.com", Password: "secret1"})
	var idErr *identity.Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, "EMAIL_EXISTS", idErr.Code)

	profile, err := env.profiles.GetProfile(env.ctx, "fan")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestLoginCreatesMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	env.auth.signIn = signUpAs("legacy")

	resp, err := env.accounts.Login(env.ctx, &models.LoginRequest{Email: "maria.silva@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "maria.silva", resp.Profile.Name)
	assert.Equal(t, models.PlanFree, resp.Profile.Plan)

	_, err = env.accounts.Login(env.ctx, &models.LoginRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestForgotPassword(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.accounts.ForgotPassword(env.ctx, " fan@example.com "))
	assert.Equal(t, []string{"fan@example.com"}, env.auth.resetSent)
	assert.ErrorIs(t, env.accounts.ForgotPassword(env.ctx, ""), ErrInvalidInput)
}
