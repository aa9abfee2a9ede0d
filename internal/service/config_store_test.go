package service_test

import (
	"testing"

	"bursary/internal/domain"
	"bursary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreFallsBackToDefaults(t *testing.T) {
	e := newEnv(t)
	cfg, err := e.config.Get(42)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.DefaultStartBalance), cfg.StartBalance)
	assert.Equal(t, int64(domain.DefaultWalletCap), cfg.WalletCap)
	assert.Equal(t, domain.DefaultMaxActiveLoans, cfg.MaxActiveLoans)

	// Defaults are served, never stored.
	var count int64
	require.NoError(t, e.db.Model(&models.CommunityConfig{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestConfigStoreWriteThrough(t *testing.T) {
	e := newEnv(t)
	cfg := models.DefaultCommunityConfig(1)
	cfg.StartBalance = 5_000
	require.NoError(t, e.config.Update(cfg))

	got, err := e.config.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), got.StartBalance)

	// Mutating the returned copy must not leak into the cache.
	got.StartBalance = 99
	again, err := e.config.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), again.StartBalance)
}

func TestConfigStoreInvalidateRereadsStore(t *testing.T) {
	e := newEnv(t)
	cfg := models.DefaultCommunityConfig(1)
	cfg.MarketTaxPct = 10
	require.NoError(t, e.config.Update(cfg))
	_, err := e.config.Get(1)
	require.NoError(t, err)

	// A write behind the cache's back is invisible until invalidation.
	require.NoError(t, e.db.Model(&models.CommunityConfig{}).
		Where("community_id = ?", uint(1)).Update("market_tax_pct", 15).Error)
	stale, err := e.config.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stale.MarketTaxPct)

	e.config.Invalidate(1)
	fresh, err := e.config.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), fresh.MarketTaxPct)
}

func TestConfigStoreReplaceTiers(t *testing.T) {
	e := newEnv(t)
	tiers, err := e.config.Tiers(1)
	require.NoError(t, err)
	assert.Empty(t, tiers, "no stored table; callers fall back to the built-in tiers")

	custom := []models.CreditTier{
		{CommunityID: 1, MinScore: 0, MaxLoanPrincipal: 100, MaxTermDays: 1},
		{CommunityID: 1, MinScore: 700, MaxLoanPrincipal: 50_000, MaxTermDays: 10},
	}
	require.NoError(t, e.config.ReplaceTiers(1, custom))

	got, err := e.config.Tiers(1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// The custom table now binds issuance: score 500 only reaches the
	// bottom tier.
	_, err = e.loans.Apply(1, 10, 500)
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	loan, err := e.loans.Apply(1, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), loan.Principal)
}
