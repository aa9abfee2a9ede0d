package service

import (
	"bursary/internal/domain"
	"bursary/internal/models"
	"bursary/internal/repository"

	"gorm.io/gorm"
)

// ExchangeService clears two-party exchanges: market listings (escrowed
// goods for money), direct wallet transfers, and the wager settlement
// primitive the mini-games call. Every settlement is atomic across all
// touched rows; a partially applied trade is never observable.
type ExchangeService struct {
	db        *gorm.DB
	accounts  *repository.AccountRepository
	listings  *repository.ListingRepository
	inventory *repository.InventoryRepository
	ledger    *LedgerService
	cfg       *ConfigStore
	audit     AuditSink
}

func NewExchangeService(db *gorm.DB, accounts *repository.AccountRepository, listings *repository.ListingRepository, inventory *repository.InventoryRepository, ledger *LedgerService, cfg *ConfigStore, audit AuditSink) *ExchangeService {
	if audit == nil {
		audit = NopSink{}
	}
	return &ExchangeService{db: db, accounts: accounts, listings: listings, inventory: inventory, ledger: ledger, cfg: cfg, audit: audit}
}

// ListForSale moves quantity out of the seller's custody and creates the
// listing atomically. The listing is the escrow: once created, those goods
// cannot be listed or traded again.
func (s *ExchangeService) ListForSale(communityID, sellerID uint, goodsRef string, quantity, totalPrice int64) (*models.MarketListing, error) {
	if quantity <= 0 || totalPrice <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var listing *models.MarketListing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.inventory.WithTx(tx).Remove(communityID, sellerID, goodsRef, quantity); err != nil {
			return err
		}
		listing = &models.MarketListing{
			CommunityID: communityID,
			SellerID:    sellerID,
			GoodsRef:    goodsRef,
			Quantity:    quantity,
			TotalPrice:  totalPrice,
		}
		return s.listings.WithTx(tx).Create(listing)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Emit(newAuditEvent("market.list", communityID, sellerID, totalPrice,
		map[string]interface{}{"listing_id": listing.ID, "goods_ref": goodsRef, "quantity": quantity}))
	return listing, nil
}

// Listings returns the community's open listings, oldest first.
func (s *ExchangeService) Listings(communityID uint) ([]models.MarketListing, error) {
	return s.listings.ListByCommunity(communityID)
}

// Purchase settles a listing: buyer bank debited the full price, seller
// bank credited price minus the community market tax, goods handed to the
// buyer, listing deleted. Four sub-mutations, one atomic unit.
func (s *ExchangeService) Purchase(buyerID uint, listingID uint) (*models.MarketListing, error) {
	var (
		listing *models.MarketListing
		tax     int64
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = s.listings.WithTx(tx).GetByID(listingID)
		if err != nil {
			return err
		}
		if listing.SellerID == buyerID {
			return domain.ErrSelfTrade
		}
		cfg, err := s.cfg.Get(listing.CommunityID)
		if err != nil {
			return err
		}
		tax = listing.TotalPrice * cfg.MarketTaxPct / 100
		payout := listing.TotalPrice - tax

		accounts := s.accounts.WithTx(tx)
		buyerBank, err := accounts.GetOrCreateBank(listing.CommunityID, buyerID)
		if err != nil {
			return err
		}
		meta := map[string]interface{}{
			"listing_id": listing.ID,
			"goods_ref":  listing.GoodsRef,
			"quantity":   listing.Quantity,
			"tax":        tax,
		}
		if _, err := s.ledger.recordIn(tx, domain.BankRef(buyerBank.ID), -listing.TotalPrice,
			domain.TxKindMarketPurchase, meta, recordOpts{}); err != nil {
			return err
		}
		if payout > 0 {
			sellerBank, err := accounts.GetOrCreateBank(listing.CommunityID, listing.SellerID)
			if err != nil {
				return err
			}
			if _, err := s.ledger.recordIn(tx, domain.BankRef(sellerBank.ID), payout,
				domain.TxKindMarketSale, meta, recordOpts{Earned: true}); err != nil {
				return err
			}
		}
		if err := s.inventory.WithTx(tx).Add(listing.CommunityID, buyerID, listing.GoodsRef, listing.Quantity); err != nil {
			return err
		}
		gone, err := s.listings.WithTx(tx).DeleteIfExists(listing.ID)
		if err != nil {
			return err
		}
		if !gone {
			return domain.ErrListingNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Emit(newAuditEvent("market.purchase", listing.CommunityID, buyerID, listing.TotalPrice,
		map[string]interface{}{"listing_id": listing.ID, "seller_id": listing.SellerID, "tax": tax}))
	return listing, nil
}

// CancelListing returns the escrowed goods to the seller and deletes the
// listing. Only the listing's owner may cancel.
func (s *ExchangeService) CancelListing(ownerID, listingID uint) error {
	var listing *models.MarketListing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = s.listings.WithTx(tx).GetByID(listingID)
		if err != nil {
			return err
		}
		if listing.SellerID != ownerID {
			return domain.ErrNotOwner
		}
		gone, err := s.listings.WithTx(tx).DeleteIfExists(listing.ID)
		if err != nil {
			return err
		}
		if !gone {
			return domain.ErrListingNotFound
		}
		return s.inventory.WithTx(tx).Add(listing.CommunityID, listing.SellerID, listing.GoodsRef, listing.Quantity)
	})
	if err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("market.cancel", listing.CommunityID, ownerID, 0,
		map[string]interface{}{"listing_id": listing.ID}))
	return nil
}

// DirectTrade swaps goods for money between two users with no listing in
// between: seller's goods to the buyer, buyer's bank funds to the seller,
// one atomic unit. No market tax on direct trades.
func (s *ExchangeService) DirectTrade(communityID, sellerID, buyerID uint, goodsRef string, quantity, price int64) error {
	if quantity <= 0 || price <= 0 {
		return domain.ErrInvalidAmount
	}
	if sellerID == buyerID {
		return domain.ErrSelfTrade
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		inventory := s.inventory.WithTx(tx)
		accounts := s.accounts.WithTx(tx)
		if err := inventory.Remove(communityID, sellerID, goodsRef, quantity); err != nil {
			return err
		}
		buyerBank, err := accounts.GetOrCreateBank(communityID, buyerID)
		if err != nil {
			return err
		}
		sellerBank, err := accounts.GetOrCreateBank(communityID, sellerID)
		if err != nil {
			return err
		}
		meta := map[string]interface{}{"goods_ref": goodsRef, "quantity": quantity, "seller_id": sellerID, "buyer_id": buyerID}
		if err := s.ledger.transferIn(tx, domain.BankRef(buyerBank.ID), domain.BankRef(sellerBank.ID),
			price, domain.TxKindMarketPurchase, domain.TxKindMarketSale, meta, 0); err != nil {
			return err
		}
		return inventory.Add(communityID, buyerID, goodsRef, quantity)
	})
	if err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("market.direct_trade", communityID, buyerID, price,
		map[string]interface{}{"seller_id": sellerID, "goods_ref": goodsRef, "quantity": quantity}))
	return nil
}

// DirectTransfer moves wallet funds between two users, enforcing the
// community wallet cap on the receiving side.
func (s *ExchangeService) DirectTransfer(communityID, fromID, toID uint, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if fromID == toID {
		return domain.ErrSelfTrade
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		from, err := accounts.GetOrCreateWallet(communityID, fromID, cfg.StartBalance)
		if err != nil {
			return err
		}
		// Receiver-side lazy creation starts at zero: the configured
		// starting balance is granted when a user first acts, not when
		// money is first sent at them.
		to, err := accounts.GetOrCreateWallet(communityID, toID, 0)
		if err != nil {
			return err
		}
		meta := map[string]interface{}{"from": fromID, "to": toID}
		return s.ledger.transferIn(tx, domain.WalletRef(from.ID), domain.WalletRef(to.ID),
			amount, domain.TxKindTransferOut, domain.TxKindTransferIn, meta, cfg.WalletCap)
	})
	if err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("transfer.direct", communityID, fromID, amount,
		map[string]interface{}{"to": toID}))
	return nil
}

// GrantGoods places quantity of goodsRef into a user's custody (admin
// action; how goods enter the economy in the first place).
func (s *ExchangeService) GrantGoods(communityID, userID uint, goodsRef string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidAmount
	}
	if err := s.inventory.Add(communityID, userID, goodsRef, quantity); err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("inventory.grant", communityID, userID, 0,
		map[string]interface{}{"goods_ref": goodsRef, "quantity": quantity}))
	return nil
}

// Inventory returns a user's goods custody.
func (s *ExchangeService) Inventory(communityID, userID uint) ([]models.InventoryItem, error) {
	return s.inventory.ListByUser(communityID, userID)
}

// SettleWager is the primitive every mini-game calls: the caller supplies
// the outcome, the ledger moves the money. The stake is debited and, on a
// win, the payout credited, clamped so the wallet never exceeds the
// community cap — excess payout is truncated, not errored, so a win is
// never blocked by a near-full wallet. Exactly one net entry (payout -
// stake) is written, none when the clamp nets to zero. Both writes are
// guarded single statements: the debit's guard and the credit's clamp
// evaluate against the row's current value, and the debit holds the row
// lock until commit, so a concurrent settlement can neither underflow the
// stake nor blow past the cap.
func (s *ExchangeService) SettleWager(communityID, userID uint, stake int64, won bool, payout int64) (net int64, err error) {
	if stake <= 0 || (won && payout < 0) {
		return 0, domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return 0, err
	}
	credit := int64(0)
	if won {
		credit = payout
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		w, err := accounts.GetOrCreateWallet(communityID, userID, cfg.StartBalance)
		if err != nil {
			return err
		}
		ref := domain.WalletRef(w.ID)
		afterStake, err := accounts.ApplyDelta(ref, -stake, false)
		if err != nil {
			return err
		}
		final := afterStake
		if credit > 0 {
			if final, err = accounts.ApplyDeltaClamped(ref, credit, cfg.WalletCap); err != nil {
				return err
			}
		}
		net = final - (afterStake + stake)
		if net == 0 {
			return nil
		}
		meta := map[string]interface{}{"stake": stake, "payout": credit, "won": won}
		_, err = s.ledger.appendIn(tx, ref, net, domain.TxKindBet, meta, net > 0)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.audit.Emit(newAuditEvent("wager.settle", communityID, userID, net,
		map[string]interface{}{"stake": stake, "won": won}))
	return net, nil
}
