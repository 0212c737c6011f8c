package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixistaking/backend/internal/services/withdrawal"
)

// WithdrawalHandler handles withdrawal requests
type WithdrawalHandler struct {
	withdrawals *withdrawal.Service
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalSvc *withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawalSvc}
}

// WithdrawalRequest represents the request body for a withdrawal
type WithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
}

// RequestWithdrawal creates a pending withdrawal for the authenticated user
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.withdrawals.Request(userID, req.Amount, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": entry})
}
