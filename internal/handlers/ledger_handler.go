package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/services/ledger"
	"github.com/pixistaking/backend/internal/services/user"
)

// LedgerHandler serves ledger and referral reads
type LedgerHandler struct {
	ledger *ledger.Service
	users  *user.Service
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerSvc *ledger.Service, userSvc *user.Service) *LedgerHandler {
	return &LedgerHandler{ledger: ledgerSvc, users: userSvc}
}

// ListTransactions returns the authenticated user's ledger entries
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	txs, err := h.ledger.Transactions(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Referrals returns the users referred by the authenticated user along with
// the commissions earned from them.
func (h *LedgerHandler) Referrals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	current, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	referred, err := h.users.ReferredUsers(current)
	if err != nil {
		respondError(c, err)
		return
	}

	commissions, err := h.ledger.TransactionsByType(userID, models.TransactionTypeReferral)
	if err != nil {
		respondError(c, err)
		return
	}

	total := decimal.Zero
	for _, tx := range commissions {
		total = total.Add(tx.Amount)
	}

	c.JSON(http.StatusOK, gin.H{
		"referral_code":     current.ReferralCode,
		"referred_users":    referred,
		"commissions":       commissions,
		"total_commissions": total,
	})
}
