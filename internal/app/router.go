// internal/app/router.go
package app

import (
	activityHandler "tably-service/internal/handlers/activity"
	identityHandler "tably-service/internal/handlers/identity"
	walletHandler "tably-service/internal/handlers/wallet"
	wsHandler "tably-service/internal/handlers/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	IdentityHandler *identityHandler.IdentityHandler
	ActivityHandler *activityHandler.ActivityHandler
	WalletHandler   *walletHandler.WalletHandler
	WSHandler       *wsHandler.WSHandler
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health & Metrics ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== Pairing Events (WebSocket) ====================
	r.GET("/ws/pairing", h.WSHandler.HandleConnection)

	// ==================== Customers & Devices ====================
	customers := api.Group("/customers")
	{
		// Register / resolve
		customers.POST("", h.IdentityHandler.Register)
		customers.GET("/by-device/:device_id", h.IdentityHandler.GetByDevice)
		customers.GET("/by-passcode/:passcode", h.IdentityHandler.GetByPasscode)

		// Device lifecycle
		customers.POST("/:id/devices", h.IdentityHandler.Link)
		customers.GET("/:id/devices", h.IdentityHandler.ListDevices)
		customers.DELETE("/:id/devices/:device_id", h.IdentityHandler.Unlink)
		customers.PUT("/:id/devices/:device_id/touch", h.IdentityHandler.Touch)

		// Passcode rotation
		customers.POST("/:id/passcode", h.IdentityHandler.RotatePasscode)

		// Activity ledger
		customers.POST("/:id/activities", h.ActivityHandler.Append)
		customers.GET("/:id/activities", h.ActivityHandler.List)
		customers.GET("/:id/orders", h.ActivityHandler.ListOrders)
		customers.GET("/:id/bookings", h.ActivityHandler.ListBookings)

		// Token ledger
		customers.GET("/:id/tokens", h.WalletHandler.Balance)
		customers.POST("/:id/tokens/deduct", h.WalletHandler.Deduct)
		customers.POST("/:id/tokens/grant", h.WalletHandler.Grant)
	}
}
