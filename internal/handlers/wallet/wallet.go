// internal/handlers/wallet/wallet.go
package wallet

import (
	"net/http"

	"tably-service/internal/domain/wallet"
	"tably-service/internal/pkg/response"
	service "tably-service/internal/service/wallet"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService *service.Service
}

func NewWalletHandler(walletService *service.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Balance returns the customer's current token balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	customerID := c.Param("id")

	balance, err := h.walletService.Balance(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, err, "profile not found")
		return
	}

	response.Success(c, http.StatusOK, "balance retrieved", balance)
}

// Deduct spends tokens from the balance.
func (h *WalletHandler) Deduct(c *gin.Context) {
	customerID := c.Param("id")

	var req wallet.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", nil)
		return
	}

	newBalance, err := h.walletService.Deduct(c.Request.Context(), customerID, req.Amount)
	if err != nil {
		response.FromError(c, err, "failed to deduct tokens")
		return
	}

	response.Success(c, http.StatusOK, "tokens deducted", wallet.BalanceResponse{
		NewBalance: newBalance,
	})
}

// Grant credits tokens to the balance.
func (h *WalletHandler) Grant(c *gin.Context) {
	customerID := c.Param("id")

	var req wallet.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", nil)
		return
	}

	newBalance, err := h.walletService.Grant(c.Request.Context(), customerID, req.Amount)
	if err != nil {
		response.FromError(c, err, "failed to grant tokens")
		return
	}

	response.Success(c, http.StatusOK, "tokens granted", wallet.BalanceResponse{
		NewBalance: newBalance,
	})
}
