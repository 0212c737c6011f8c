package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixistaking/backend/internal/services/account"
	"github.com/pixistaking/backend/internal/services/accrual"
	"github.com/pixistaking/backend/internal/services/user"
	"github.com/pixistaking/backend/internal/services/withdrawal"
)

// AdminHandler handles the administration surface: users, pending
// withdrawals and manual accrual runs. Routes using it sit behind the admin
// middleware.
type AdminHandler struct {
	users       *user.Service
	accounts    *account.Service
	withdrawals *withdrawal.Service
	accrual     *accrual.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userSvc *user.Service, accountSvc *account.Service, withdrawalSvc *withdrawal.Service, accrualSvc *accrual.Service) *AdminHandler {
	return &AdminHandler{
		users:       userSvc,
		accounts:    accountSvc,
		withdrawals: withdrawalSvc,
		accrual:     accrualSvc,
	}
}

// ListUsers returns all users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// PendingWithdrawals returns all pending withdrawal requests
func (h *AdminHandler) PendingWithdrawals(c *gin.Context) {
	pending, err := h.withdrawals.Pending()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": pending})
}

// ApproveWithdrawal completes a pending withdrawal
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.withdrawals.Approve(txID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": entry})
}

// CancelWithdrawal cancels a pending withdrawal and refunds the user
func (h *AdminHandler) CancelWithdrawal(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.withdrawals.Cancel(txID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": entry})
}

// TogglePause pauses or resumes a user
func (h *AdminHandler) TogglePause(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	updated, err := h.accounts.TogglePause(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// CreditUserRequest represents the request body for an admin balance credit
type CreditUserRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreditUser credits a user's balance as a RECHARGE entry
func (h *AdminHandler) CreditUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.accounts.Credit(userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": entry})
}

// RunAccrual triggers an accrual tick for all users and reports the credits
func (h *AdminHandler) RunAccrual(c *gin.Context) {
	results, err := h.accrual.RunTick(time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
