package handler

import (
	"net/http"

	"bursary/internal/models"
	"bursary/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the per-community rule tables. All routes sit behind
// the admin role.
type AdminHandler struct {
	cfg *service.ConfigStore
}

func NewAdminHandler(cfg *service.ConfigStore) *AdminHandler {
	return &AdminHandler{cfg: cfg}
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	cfg, err := h.cfg.Get(communityID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig writes the community's rule table through to the store; the
// cache is refreshed before this returns.
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	var cfg models.CommunityConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config body"})
		return
	}
	cfg.ID = 0
	cfg.CommunityID = communityID
	if cfg.MinCreditScore > cfg.MaxCreditScore || cfg.MaxActiveLoans < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config bounds"})
		return
	}
	if err := h.cfg.Update(&cfg); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) GetTiers(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	tiers, err := h.cfg.Tiers(communityID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

type tiersRequest struct {
	Tiers []models.CreditTier `json:"tiers" binding:"required"`
}

// ReplaceTiers swaps the community's whole loan tier table.
func (h *AdminHandler) ReplaceTiers(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	var req tiersRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Tiers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tiers required"})
		return
	}
	for _, t := range req.Tiers {
		if t.MaxLoanPrincipal <= 0 || t.MaxTermDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier row"})
			return
		}
	}
	if err := h.cfg.ReplaceTiers(communityID, req.Tiers); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
