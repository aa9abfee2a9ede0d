package handler

import (
	"net/http"

	"bursary/config"
	"bursary/internal/auth"
	"bursary/internal/domain"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type tokenRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// Token mints a JWT for a trusted caller. Both configured client IDs share
// one secret; the admin client gets the admin role.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id and client_secret required"})
		return
	}
	if req.ClientID != h.cfg.API.ClientID && req.ClientID != h.cfg.API.AdminClientID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown client"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.API.ClientSecretHash), []byte(req.ClientSecret)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	role := domain.RoleService
	if req.ClientID == h.cfg.API.AdminClientID {
		role = domain.RoleAdmin
	}
	token, err := auth.GenerateToken(&h.cfg.JWT, req.ClientID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": role, "expires_in": int(h.cfg.JWT.Expiry.Seconds())})
}
