package handler

import (
	"net/http"
	"time"

	"bursary/internal/service"

	"github.com/gin-gonic/gin"
)

type InvestmentHandler struct {
	investments *service.InvestmentService
}

func NewInvestmentHandler(investments *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

type openInvestmentRequest struct {
	Kind     string `json:"kind" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
	TermDays int    `json:"term_days" binding:"required"`
}

func (h *InvestmentHandler) Open(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req openInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind, amount and term_days required"})
		return
	}
	inv, err := h.investments.Open(communityID, userID, req.Kind, req.Amount, req.TermDays)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvestmentHandler) List(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	list, err := h.investments.List(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investments": list})
}

// Collect settles the caller's matured investments now instead of waiting
// for the scheduled sweep.
func (h *InvestmentHandler) Collect(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	paid, _ := h.investments.SweepMatured(time.Now(), communityID, userID)
	c.JSON(http.StatusOK, gin.H{"collected": len(paid), "investments": paid})
}
