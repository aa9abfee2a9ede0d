package service_test

import (
	"sync"
	"testing"

	"bursary/internal/domain"
	"bursary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectTransferBetweenUsers(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.DirectTransfer(1, 10, 11, 250))

	assert.Equal(t, int64(750), e.walletBalance(t, 1, 10))
	// The receiver's wallet is created on demand at zero; the starting
	// balance is granted when a user first acts, not when money arrives.
	assert.Equal(t, int64(250), e.walletBalance(t, 1, 11))

	senderEntries, err := e.ledger.EntriesFor(e.walletRef(t, 1, 10), 10)
	require.NoError(t, err)
	require.Len(t, senderEntries, 2) // seeded start balance, then the send
	assert.Equal(t, domain.TxKindTransferOut, senderEntries[0].Kind)
	assert.Equal(t, int64(-250), senderEntries[0].Amount)

	receiverEntries, err := e.ledger.EntriesFor(e.walletRef(t, 1, 11), 10)
	require.NoError(t, err)
	require.Len(t, receiverEntries, 1)
	assert.Equal(t, domain.TxKindTransferIn, receiverEntries[0].Kind)
	assert.Equal(t, int64(250), receiverEntries[0].Amount)

	e.requireConserved(t, e.walletRef(t, 1, 10))
	e.requireConserved(t, e.walletRef(t, 1, 11))
}

func TestDirectTransferRejections(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.exchange.DirectTransfer(1, 10, 11, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, e.exchange.DirectTransfer(1, 10, 10, 100), domain.ErrSelfTrade)
	assert.ErrorIs(t, e.exchange.DirectTransfer(1, 10, 11, 2_000), domain.ErrInsufficientFunds)
}

func TestDirectTransferEnforcesReceiverWalletCap(t *testing.T) {
	e := newEnv(t)
	e.storeConfig(t, 1, func(c *models.CommunityConfig) { c.WalletCap = 1_100 })
	// Receiver acts first, so their wallet sits at the start balance.
	_, _, err := e.ledger.Balances(1, 11)
	require.NoError(t, err)

	err = e.exchange.DirectTransfer(1, 10, 11, 200)
	assert.ErrorIs(t, err, domain.ErrBalanceCapExceeded)
	assert.Equal(t, int64(1_000), e.walletBalance(t, 1, 10), "sender debit rolled back")
	assert.Equal(t, int64(1_000), e.walletBalance(t, 1, 11))

	require.NoError(t, e.exchange.DirectTransfer(1, 10, 11, 100))
	assert.Equal(t, int64(1_100), e.walletBalance(t, 1, 11))
}

func TestListForSaleEscrowsGoods(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "iron_ore", 5))

	listing, err := e.exchange.ListForSale(1, 10, "iron_ore", 3, 600)
	require.NoError(t, err)

	inv, err := e.exchange.Inventory(1, 10)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, int64(2), inv[0].Quantity, "listed goods leave custody immediately")

	// Cannot list more than what remains in custody.
	_, err = e.exchange.ListForSale(1, 10, "iron_ore", 3, 600)
	assert.ErrorIs(t, err, domain.ErrInsufficientGoods)

	open, err := e.exchange.Listings(1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, listing.ID, open[0].ID)
}

func TestPurchaseAppliesMarketTax(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "iron_ore", 3))
	listing, err := e.exchange.ListForSale(1, 10, "iron_ore", 3, 600)
	require.NoError(t, err)
	require.NoError(t, e.ledger.Deposit(1, 11, 700))

	_, err = e.exchange.Purchase(11, listing.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(100), e.bankBalance(t, 1, 11), "buyer pays the full price")
	// 2% tax on 600 is burned, seller receives 588.
	assert.Equal(t, int64(588), e.bankBalance(t, 1, 10))

	buyerInv, err := e.exchange.Inventory(1, 11)
	require.NoError(t, err)
	require.Len(t, buyerInv, 1)
	assert.Equal(t, int64(3), buyerInv[0].Quantity)

	open, err := e.exchange.Listings(1)
	require.NoError(t, err)
	assert.Empty(t, open)

	e.requireConserved(t, e.bankRef(t, 1, 10))
	e.requireConserved(t, e.bankRef(t, 1, 11))
}

func TestPurchaseFailureLeavesListingIntact(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "iron_ore", 3))
	listing, err := e.exchange.ListForSale(1, 10, "iron_ore", 3, 600)
	require.NoError(t, err)

	// Buyer's bank holds nothing.
	_, err = e.exchange.Purchase(11, listing.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	open, err := e.exchange.Listings(1)
	require.NoError(t, err)
	assert.Len(t, open, 1, "failed purchase leaves the listing open")
	buyerInv, err := e.exchange.Inventory(1, 11)
	require.NoError(t, err)
	assert.Empty(t, buyerInv)
	assert.Equal(t, int64(0), e.bankBalance(t, 1, 10))
}

func TestPurchaseRejectsSelfAndMissingListing(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "iron_ore", 1))
	listing, err := e.exchange.ListForSale(1, 10, "iron_ore", 1, 100)
	require.NoError(t, err)

	_, err = e.exchange.Purchase(10, listing.ID)
	assert.ErrorIs(t, err, domain.ErrSelfTrade)
	_, err = e.exchange.Purchase(11, listing.ID+999)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestCancelListingReturnsGoodsToOwnerOnly(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "iron_ore", 4))
	listing, err := e.exchange.ListForSale(1, 10, "iron_ore", 4, 800)
	require.NoError(t, err)

	assert.ErrorIs(t, e.exchange.CancelListing(11, listing.ID), domain.ErrNotOwner)

	require.NoError(t, e.exchange.CancelListing(10, listing.ID))
	inv, err := e.exchange.Inventory(1, 10)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, int64(4), inv[0].Quantity)

	assert.ErrorIs(t, e.exchange.CancelListing(10, listing.ID), domain.ErrListingNotFound)
}

func TestDirectTradeSwapsGoodsForFundsWithoutTax(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.exchange.GrantGoods(1, 10, "timber", 2))
	require.NoError(t, e.ledger.Deposit(1, 11, 500))

	require.NoError(t, e.exchange.DirectTrade(1, 10, 11, "timber", 2, 300))

	assert.Equal(t, int64(300), e.bankBalance(t, 1, 10), "seller receives the full price")
	assert.Equal(t, int64(200), e.bankBalance(t, 1, 11))
	buyerInv, err := e.exchange.Inventory(1, 11)
	require.NoError(t, err)
	require.Len(t, buyerInv, 1)
	assert.Equal(t, int64(2), buyerInv[0].Quantity)
	sellerInv, err := e.exchange.Inventory(1, 10)
	require.NoError(t, err)
	assert.Empty(t, sellerInv)

	assert.ErrorIs(t, e.exchange.DirectTrade(1, 10, 10, "timber", 1, 100), domain.ErrSelfTrade)
	e.requireConserved(t, e.bankRef(t, 1, 10))
	e.requireConserved(t, e.bankRef(t, 1, 11))
}

func TestSettleWagerLoss(t *testing.T) {
	e := newEnv(t)
	net, err := e.exchange.SettleWager(1, 10, 100, false, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), net)
	assert.Equal(t, int64(900), e.walletBalance(t, 1, 10))

	entries, err := e.ledger.EntriesFor(e.walletRef(t, 1, 10), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.TxKindBet, entries[0].Kind)
	assert.Equal(t, int64(-100), entries[0].Amount)
	e.requireConserved(t, e.walletRef(t, 1, 10))
}

func TestSettleWagerWinClampsToWalletCap(t *testing.T) {
	e := newEnv(t)
	e.storeConfig(t, 1, func(c *models.CommunityConfig) { c.WalletCap = 1_200 })

	net, err := e.exchange.SettleWager(1, 10, 100, true, 500)
	require.NoError(t, err)
	// Raw net is +400, clamped so the wallet lands exactly on the cap.
	assert.Equal(t, int64(200), net)
	assert.Equal(t, int64(1_200), e.walletBalance(t, 1, 10))
	e.requireConserved(t, e.walletRef(t, 1, 10))
}

func TestSettleWagerClampToZeroWritesNoEntry(t *testing.T) {
	e := newEnv(t)
	e.storeConfig(t, 1, func(c *models.CommunityConfig) { c.WalletCap = 1_000 })

	net, err := e.exchange.SettleWager(1, 10, 100, true, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(0), net)
	assert.Equal(t, int64(1_000), e.walletBalance(t, 1, 10))

	entries, err := e.ledger.EntriesFor(e.walletRef(t, 1, 10), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the seeded start balance; a zero net writes nothing")
	e.requireConserved(t, e.walletRef(t, 1, 10))
}

func TestConcurrentWagersAllSettle(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.ledger.Balances(1, 10)
	require.NoError(t, err)

	// Contended settlements must serialize on the wallet row and land,
	// not bounce back to the caller as retryable failures.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			net, err := e.exchange.SettleWager(1, 10, 100, false, 0)
			if assert.NoError(t, err) {
				assert.Equal(t, int64(-100), net)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(600), e.walletBalance(t, 1, 10))
	entries, err := e.ledger.EntriesFor(e.walletRef(t, 1, 10), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 5) // seeded start balance plus four stakes
	e.requireConserved(t, e.walletRef(t, 1, 10))
}

func TestSettleWagerRejections(t *testing.T) {
	e := newEnv(t)
	_, err := e.exchange.SettleWager(1, 10, 0, false, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = e.exchange.SettleWager(1, 10, 2_000, false, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(1_000), e.walletBalance(t, 1, 10))
}
