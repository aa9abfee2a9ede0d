package handler

import (
	"net/http"

	"bursary/internal/service"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loans *service.LoanService
}

func NewLoanHandler(loans *service.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// Eligibility reports the tier the user's current score qualifies for.
func (h *LoanHandler) Eligibility(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	score, tier, err := h.loans.Eligibility(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"credit_score":       score,
		"max_loan_principal": tier.MaxLoanPrincipal,
		"max_term_days":      tier.MaxTermDays,
	})
}

func (h *LoanHandler) List(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	loans, err := h.loans.ListLoans(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

func (h *LoanHandler) Apply(c *gin.Context) {
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
	loan, err := h.loans.Apply(communityID, userID, req.Amount)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

func (h *LoanHandler) Repay(c *gin.Context) {
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
	result, err := h.loans.Repay(communityID, userID, req.Amount)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type loanBanRequest struct {
	Banned bool `json:"banned"`
}

// SetBan flips a user's loan ban (admin only).
func (h *LoanHandler) SetBan(c *gin.Context) {
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req loanBanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "banned required"})
		return
	}
	if err := h.loans.SetLoanBanned(userID, req.Banned); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
