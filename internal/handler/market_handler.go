package handler

import (
	"net/http"

	"bursary/internal/service"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	exchange *service.ExchangeService
}

func NewMarketHandler(exchange *service.ExchangeService) *MarketHandler {
	return &MarketHandler{exchange: exchange}
}

func (h *MarketHandler) Listings(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	listings, err := h.exchange.Listings(communityID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

type listRequest struct {
	SellerID   uint   `json:"seller_id" binding:"required"`
	GoodsRef   string `json:"goods_ref" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required"`
	TotalPrice int64  `json:"total_price" binding:"required"`
}

func (h *MarketHandler) List(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id, goods_ref, quantity and total_price required"})
		return
	}
	listing, err := h.exchange.ListForSale(communityID, req.SellerID, req.GoodsRef, req.Quantity, req.TotalPrice)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

type purchaseRequest struct {
	BuyerID uint `json:"buyer_id" binding:"required"`
}

func (h *MarketHandler) Purchase(c *gin.Context) {
	listingID, ok := paramUint(c, "listing_id")
	if !ok {
		return
	}
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_id required"})
		return
	}
	listing, err := h.exchange.Purchase(req.BuyerID, listingID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

type cancelRequest struct {
	OwnerID uint `json:"owner_id" binding:"required"`
}

func (h *MarketHandler) Cancel(c *gin.Context) {
	listingID, ok := paramUint(c, "listing_id")
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id required"})
		return
	}
	if err := h.exchange.CancelListing(req.OwnerID, listingID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type directTradeRequest struct {
	SellerID uint   `json:"seller_id" binding:"required"`
	BuyerID  uint   `json:"buyer_id" binding:"required"`
	GoodsRef string `json:"goods_ref" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
	Price    int64  `json:"price" binding:"required"`
}

func (h *MarketHandler) DirectTrade(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	var req directTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id, buyer_id, goods_ref, quantity and price required"})
		return
	}
	if err := h.exchange.DirectTrade(communityID, req.SellerID, req.BuyerID, req.GoodsRef, req.Quantity, req.Price); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MarketHandler) Inventory(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	items, err := h.exchange.Inventory(communityID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type grantRequest struct {
	GoodsRef string `json:"goods_ref" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

// Grant seeds goods into a user's custody (admin only).
func (h *MarketHandler) Grant(c *gin.Context) {
	communityID, ok := paramUint(c, "community_id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goods_ref and quantity required"})
		return
	}
	if err := h.exchange.GrantGoods(communityID, userID, req.GoodsRef, req.Quantity); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
