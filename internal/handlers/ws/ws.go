// internal/handlers/ws/ws.go
package ws

import (
	"net/http"

	"tably-service/internal/pkg/response"
	hubpkg "tably-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Pairing events are non-sensitive display data; the storefront runs on
	// many QR-scanned origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *hubpkg.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *hubpkg.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades the request and subscribes the device to its
// customer's pairing events.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	customerID := c.Query("customer_id")
	deviceID := c.Query("device_id")
	if customerID == "" || deviceID == "" {
		response.ValidationError(c, "customer_id and device_id are required", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := hubpkg.NewClient(h.hub, conn, customerID, deviceID)
	go client.Start()
}
