package services

import (
	"testing"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRefCode(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"abcd2345", "ABCD2345"},
		{" Abcd2345 ", "ABCD2345"},
		{"https://dramabox.example/pagina.php?ref=abcd2345", "ABCD2345"},
		{"https://dramabox.example/pagina.php?utm=x&ref=QWER7788", "QWER7788"},
		{"https://dramabox.example/r/abcd2345", "ABCD2345"},
		{"https://dramabox.example/r/abcd2345/", "ABCD2345"},
		{"?ref=zz99", "ZZ99"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRefCode(tt.raw))
		})
	}
}

func TestEnsureAffiliateIsStable(t *testing.T) {
	env := newTestEnv(t)

	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, code, affiliateCodeLength)
	for _, r := range code {
		assert.Contains(t, affiliateCodeAlphabet, string(r))
	}

	again, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, code, again)

	var claim models.AffiliateCode
	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(affiliateCodesRoot, code), &claim))
	assert.Equal(t, "owner", claim.UID)
}

func TestEnsureAffiliateRetriesTakenCodes(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(env.ctx, rtdb.Join(affiliateCodesRoot, "TAKEN222"), models.AffiliateCode{UID: "someone"}))

	codes := []string{"TAKEN222", "FREE3333"}
	env.affiliates.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "FREE3333", code)

	env.affiliates.newCode = func() string { return "TAKEN222" }
	_, err = env.affiliates.EnsureAffiliate(env.ctx, "other")
	assert.Error(t, err)
}

func TestLandingLink(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "https://dramabox.example/pagina.php?ref=ABCD2345", env.affiliates.LandingLink("abcd2345"))
	assert.Empty(t, env.affiliates.LandingLink(" "))

	withQuery := NewAffiliateService(env.store, env.wallet, nil, "https://x.example/p?lang=pt")
	assert.Equal(t, "https://x.example/p?lang=pt&ref=ABCD2345", withQuery.LandingLink("ABCD2345"))
}

func TestCaptureLead(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)

	_, _, err = env.affiliates.CaptureLead(env.ctx, "NOPE1234", "a@b.com")
	assert.ErrorIs(t, err, ErrUnknownCode)

	_, _, err = env.affiliates.CaptureLead(env.ctx, code, "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidInput)

	key, created, err := env.affiliates.CaptureLead(env.ctx, "https://dramabox.example/pagina.php?ref="+code, " Fan@Example.com ")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, key, again)

	_, created, err = env.affiliates.CaptureLead(env.ctx, code, "other@example.com")
	require.NoError(t, err)
	assert.True(t, created)

	summary, err := env.affiliates.Summary(env.ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, code, summary.Code)
	assert.Equal(t, 2, summary.Clicks)
	assert.Equal(t, 0, summary.Confirmed)
	assert.Contains(t, summary.Link, "ref="+code)
}

func TestFindCodeByEmailPrefersOldestLead(t *testing.T) {
	env := newTestEnv(t)
	env.affiliates.newCode = func() string { return "LATE2222" }
	late, err := env.affiliates.EnsureAffiliate(env.ctx, "late")
	require.NoError(t, err)
	env.affiliates.newCode = func() string { return "ZEAR3333" }
	early, err := env.affiliates.EnsureAffiliate(env.ctx, "early")
	require.NoError(t, err)

	_, _, err = env.affiliates.CaptureLead(env.ctx, early, "fan@example.com")
	require.NoError(t, err)
	env.advance(time.Hour)
	_, _, err = env.affiliates.CaptureLead(env.ctx, late, "fan@example.com")
	require.NoError(t, err)

	found, err := env.affiliates.FindCodeByEmail(env.ctx, "FAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, early, found)

	found, err = env.affiliates.FindCodeByEmail(env.ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestConfirmLeadOnRegister(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	key, _, err := env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)

	res, err := env.affiliates.ConfirmLeadOnRegister(env.ctx, "UNKNOWN9", "fan@example.com", "fan")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Unknown affiliate code.", res.Message)

	res, err = env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "fan@example.com", "owner")
	assert.ErrorIs(t, err, ErrSelfReferral)
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.Equal(t, "You cannot use your own affiliate code.", res.Message)

	res, err = env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "stranger@example.com", "fan")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "No pending lead for this email.", res.Message)

	res, err = env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "Fan@Example.com", "fan")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, key, res.LeadKey)
	assert.Equal(t, "owner", res.OwnerUID)
	assert.Equal(t, int64(50), res.BonusCoins)
	assert.Equal(t, int64(50), env.coins(t, "owner"))
	assert.Equal(t, 1, env.notifier.count("owner", EventLeadConfirmed))

	var lead models.AffiliateLead
	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(affiliateLeadsRoot, code, key), &lead))
	assert.Equal(t, models.LeadConfirmed, lead.Status)
	assert.Equal(t, "fan", lead.ConfirmedUID)

	var referred models.UserAffiliate
	require.NoError(t, env.store.Get(env.ctx, userAffiliatePath("fan"), &referred))
	assert.Equal(t, "owner", referred.ReferredBy)

	res, err = env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "fan@example.com", "fan")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, int64(50), env.coins(t, "owner"))

	summary, err := env.affiliates.Summary(env.ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Signups)
	assert.Equal(t, int64(50), summary.BonusCoins)
	assert.Equal(t, 1, summary.Confirmed)
	assert.Equal(t, 0, summary.Clicks)
}

func TestConfirmUsesConfiguredBonus(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(env.ctx, affiliateRoyaltyPath, models.AffiliateRoyaltyConfig{CoinsPerConfirmedSignup: 120}))
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	_, _, err = env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)

	res, err := env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "fan@example.com", "fan")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(120), env.coins(t, "owner"))
}

func TestConfirmLeadRollsBackWhenBonusFails(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.affiliates.EnsureAffiliate(env.ctx, "owner")
	require.NoError(t, err)
	key, _, err := env.affiliates.CaptureLead(env.ctx, code, "fan@example.com")
	require.NoError(t, err)

	env.faults.failWrites(walletPath("owner"))
	_, err = env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "fan@example.com", "fan")
	assert.ErrorIs(t, err, errStoreDown)

	var lead models.AffiliateLead
	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(affiliateLeadsRoot, code, key), &lead))
	assert.Equal(t, models.LeadPending, lead.Status)
	assert.Empty(t, lead.ConfirmedUID)

	var stats models.AffiliateStats
	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(affiliateStatsRoot, "owner"), &stats))
	assert.Equal(t, int64(0), stats.Signups)
	assert.Equal(t, int64(0), stats.BonusCoins)

	var referredBy string
	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(userAffiliatePath("fan"), "referredBy"), &referredBy))
	assert.Empty(t, referredBy)

	env.faults.heal()
	res, err := env.affiliates.ConfirmLeadOnRegister(env.ctx, code, "fan@example.com", "fan")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, key, res.LeadKey)
	assert.Equal(t, int64(50), env.coins(t, "owner"))

	require.NoError(t, env.store.Get(env.ctx, rtdb.Join(affiliateStatsRoot, "owner"), &stats))
	assert.Equal(t, int64(1), stats.Signups)
	assert.Equal(t, int64(50), stats.BonusCoins)
}
