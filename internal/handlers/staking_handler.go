package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixistaking/backend/internal/plans"
	"github.com/pixistaking/backend/internal/services/staking"
)

// StakingHandler handles stake creation and listing
type StakingHandler struct {
	staking *staking.Service
}

// NewStakingHandler creates a new staking handler
func NewStakingHandler(stakingSvc *staking.Service) *StakingHandler {
	return &StakingHandler{staking: stakingSvc}
}

// CreateStakeRequest represents the request body for creating a stake
type CreateStakeRequest struct {
	PlanID       string          `json:"plan_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	DurationDays *int            `json:"duration_days"`
}

// CreateStake admits a new stake for the authenticated user
func (h *StakingHandler) CreateStake(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stake, err := h.staking.CreateStake(userID, req.PlanID, req.Amount, req.DurationDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stake": stake})
}

// ListStakes returns the authenticated user's stakes
func (h *StakingHandler) ListStakes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stakes, err := h.staking.StakesForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakes": stakes})
}

// ListPlans returns the staking plan catalog
func (h *StakingHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": plans.All()})
}
