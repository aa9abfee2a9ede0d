package handler

import (
	"net/http"
	"strconv"

	"bursary/internal/domain"
	"bursary/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledger   *service.LedgerService
	exchange *service.ExchangeService
}

func NewWalletHandler(ledger *service.LedgerService, exchange *service.ExchangeService) *WalletHandler {
	return &WalletHandler{ledger: ledger, exchange: exchange}
}

// Balances returns the user's wallet and bank balances, creating the
// wallet with the community's starting balance on first reference.
func (h *WalletHandler) Balances(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	w, b, err := h.ledger.Balances(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet": w.Balance,
		"bank":   b.Balance,
	})
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// Deposit moves wallet funds into the bank.
func (h *WalletHandler) Deposit(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount required"})
		return
	}
	if err := h.ledger.Deposit(communityID, userID, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Withdraw moves bank funds back into the wallet.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount required"})
		return
	}
	if err := h.ledger.Withdraw(communityID, userID, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type transferRequest struct {
	ToUserID uint  `json:"to_user_id" binding:"required"`
	Amount   int64 `json:"amount" binding:"required"`
}

// Transfer sends wallet funds to another user.
func (h *WalletHandler) Transfer(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id and amount required"})
		return
	}
	if err := h.exchange.DirectTransfer(communityID, userID, req.ToUserID, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ledger returns the most recent entries for one of the user's accounts
// (?account=wallet|bank, ?limit=N).
func (h *WalletHandler) Ledger(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	w, b, err := h.ledger.Balances(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	ref := domain.WalletRef(w.ID)
	if c.Query("account") == "bank" {
		ref = domain.BankRef(b.ID)
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.ledger.EntriesFor(ref, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type wagerRequest struct {
	Stake  int64 `json:"stake" binding:"required"`
	Won    bool  `json:"won"`
	Payout int64 `json:"payout"`
}

// Wager settles a mini-game outcome against the user's wallet.
func (h *WalletHandler) Wager(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req wagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stake required"})
		return
	}
	net, err := h.exchange.SettleWager(communityID, userID, req.Stake, req.Won, req.Payout)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"net": net})
}
