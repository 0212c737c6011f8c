package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixistaking/backend/internal/config"
	"github.com/pixistaking/backend/internal/services/session"
	"github.com/pixistaking/backend/internal/services/user"
	"github.com/pixistaking/backend/internal/utils"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	users    *user.Service
	denylist *session.Denylist
	jwtCfg   config.JWTConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, denylist *session.Denylist, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{users: users, denylist: denylist, jwtCfg: jwtCfg}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// TokenResponse represents the response for token requests
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	TokenType   string `json:"token_type"`
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.users.Register(req.Username, req.Email, req.Password, req.ReferralCode)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := utils.GenerateToken(created.ID, created.Email, created.IsAdmin, h.jwtCfg.Secret, h.expiration())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": created,
		"token": TokenResponse{
			AccessToken: token,
			ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
			TokenType:   "Bearer",
		},
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authed, err := h.users.Authenticate(req.Identifier, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, expiresAt, err := utils.GenerateToken(authed.ID, authed.Email, authed.IsAdmin, h.jwtCfg.Secret, h.expiration())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": authed,
		"token": TokenResponse{
			AccessToken: token,
			ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
			TokenType:   "Bearer",
		},
	})
}

// Logout revokes the current token by putting it on the denylist until its
// natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenValue, exists := c.Get("token")
	if !exists || h.denylist == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}

	tokenString := tokenValue.(string)
	if claims, err := utils.ValidateToken(tokenString, h.jwtCfg.Secret); err == nil {
		ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
		_ = h.denylist.Add(c.Request.Context(), tokenString, ttl)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	current, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": current})
}

func (h *AuthHandler) expiration() time.Duration {
	return time.Duration(h.jwtCfg.Expiration) * time.Hour
}
