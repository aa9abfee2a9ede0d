package service_test

import (
	"testing"
	"time"

	"bursary/internal/domain"
	"bursary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInvestmentDebitsBank(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ledger.Deposit(1, 10, 800))

	inv, err := e.investments.Open(1, 10, domain.InvestmentKindFD, 500, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(500), inv.Principal)
	assert.Equal(t, int64(domain.DefaultFDInterestPct), inv.InterestRatePct)
	assert.Equal(t, domain.InvestmentStatusActive, inv.Status)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), inv.MaturesAt, time.Minute)

	assert.Equal(t, int64(300), e.bankBalance(t, 1, 10))
	e.requireConserved(t, e.bankRef(t, 1, 10))
}

func TestOpenInvestmentRejections(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ledger.Deposit(1, 10, 800))

	_, err := e.investments.Open(1, 10, domain.InvestmentKindFD, 0, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = e.investments.Open(1, 10, domain.InvestmentKindFD, 500, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = e.investments.Open(1, 10, "bond", 500, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	_, err = e.investments.Open(1, 10, domain.InvestmentKindRD, 900, 30)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(800), e.bankBalance(t, 1, 10), "failed open leaves the bank untouched")

	list, err := e.investments.List(1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSweepMaturedPaysPrincipalPlusInterest(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ledger.Deposit(1, 10, 1_000))
	inv, err := e.investments.Open(1, 10, domain.InvestmentKindFD, 1_000, 30)
	require.NoError(t, err)

	// Not yet mature: sweep pays nothing.
	paid, skipped := e.investments.SweepMatured(time.Now(), 1, 10)
	assert.Empty(t, paid)
	assert.Equal(t, 0, skipped)

	require.NoError(t, e.db.Model(&models.Investment{}).Where("id = ?", inv.ID).
		Update("matures_at", time.Now().Add(-time.Hour)).Error)

	paid, skipped = e.investments.SweepMatured(time.Now(), 1, 10)
	require.Len(t, paid, 1)
	assert.Equal(t, 0, skipped)
	// 8% on 1000.
	assert.Equal(t, int64(1_080), e.bankBalance(t, 1, 10))
	e.requireConserved(t, e.bankRef(t, 1, 10))

	var reloaded models.Investment
	require.NoError(t, e.db.First(&reloaded, inv.ID).Error)
	assert.Equal(t, domain.InvestmentStatusCompleted, reloaded.Status)

	// Re-running the sweep must not pay a second time.
	paid, skipped = e.investments.SweepMatured(time.Now(), 1, 10)
	assert.Empty(t, paid)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, int64(1_080), e.bankBalance(t, 1, 10))
}

func TestSweepMaturedScoping(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ledger.Deposit(1, 10, 500))
	require.NoError(t, e.ledger.Deposit(1, 11, 500))
	a, err := e.investments.Open(1, 10, domain.InvestmentKindRD, 500, 7)
	require.NoError(t, err)
	b, err := e.investments.Open(1, 11, domain.InvestmentKindRD, 500, 7)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.Investment{}).
		Where("id IN ?", []uint{a.ID, b.ID}).
		Update("matures_at", time.Now().Add(-time.Minute)).Error)

	// Scoped to one user: the other user's investment stays pending.
	paid, _ := e.investments.SweepMatured(time.Now(), 1, 10)
	require.Len(t, paid, 1)
	assert.Equal(t, a.ID, paid[0].ID)
	assert.Equal(t, int64(0), e.bankBalance(t, 1, 11), "other user's payout not yet made")

	// Unscoped scheduled pass picks up the rest. 6% on 500.
	paid, _ = e.investments.SweepMatured(time.Now(), 0, 0)
	require.Len(t, paid, 1)
	assert.Equal(t, b.ID, paid[0].ID)
	assert.Equal(t, int64(530), e.bankBalance(t, 1, 11))
	e.requireConserved(t, e.bankRef(t, 1, 11))
}
