// internal/handlers/identity/identity.go
package identity

import (
	"net/http"

	"tably-service/internal/domain/customer"
	"tably-service/internal/domain/device"
	"tably-service/internal/pkg/response"
	"tably-service/internal/service/passcode"
	service "tably-service/internal/service/identity"

	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	identityService *service.Service
	passcodes       *passcode.Authority
}

func NewIdentityHandler(identityService *service.Service, passcodes *passcode.Authority) *IdentityHandler {
	return &IdentityHandler{
		identityService: identityService,
		passcodes:       passcodes,
	}
}

// Register creates a new customer profile bound to the calling device. With a
// passcode in the body it instead joins the existing profile the code
// resolves to, pairing the device in the same call.
func (h *IdentityHandler) Register(c *gin.Context) {
	var req customer.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", nil)
		return
	}

	if req.Passcode != "" {
		cust, err := h.passcodes.Lookup(c.Request.Context(), req.Passcode)
		if err != nil {
			response.FromError(c, err, "failed to join customer")
			return
		}
		dev, err := h.identityService.Link(c.Request.Context(), cust.ID, req.DeviceID, req.Fingerprint, req.DisplayName)
		if err != nil {
			response.FromError(c, err, "failed to join customer")
			return
		}
		response.Success(c, http.StatusOK, "device joined customer", customer.RegisterResponse{
			Customer: cust,
			Device:   dev,
		})
		return
	}

	cust, dev, err := h.identityService.Register(c.Request.Context(), req.DeviceID, req.Fingerprint, req.DisplayName)
	if err != nil {
		response.FromError(c, err, "failed to register customer")
		return
	}

	response.Success(c, http.StatusCreated, "customer registered", customer.RegisterResponse{
		Customer: cust,
		Device:   dev,
	})
}

// GetByDevice resolves a device id to its customer profile.
func (h *IdentityHandler) GetByDevice(c *gin.Context) {
	deviceID := c.Param("device_id")

	cust, err := h.identityService.GetByDevice(c.Request.Context(), deviceID)
	if err != nil {
		response.FromError(c, err, "profile not found")
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", cust)
}

// GetByPasscode resolves a pairing code to its customer profile.
func (h *IdentityHandler) GetByPasscode(c *gin.Context) {
	code := c.Param("passcode")

	cust, err := h.passcodes.Lookup(c.Request.Context(), code)
	if err != nil {
		response.FromError(c, err, "profile not found")
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", cust)
}

// Link binds a device to an existing customer.
func (h *IdentityHandler) Link(c *gin.Context) {
	customerID := c.Param("id")

	var req device.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", nil)
		return
	}

	dev, err := h.identityService.Link(c.Request.Context(), customerID, req.DeviceID, req.Fingerprint, req.DisplayName)
	if err != nil {
		response.FromError(c, err, "failed to link device")
		return
	}

	response.Success(c, http.StatusOK, "device linked", dev)
}

// ListDevices returns the customer's devices, newest registration first.
func (h *IdentityHandler) ListDevices(c *gin.Context) {
	customerID := c.Param("id")

	devices, err := h.identityService.ListDevices(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, err, "failed to list devices")
		return
	}

	response.Success(c, http.StatusOK, "devices retrieved", device.ListResponse{
		Devices: devices,
		Total:   len(devices),
	})
}

// Unlink removes a device binding, only for its owning customer.
func (h *IdentityHandler) Unlink(c *gin.Context) {
	customerID := c.Param("id")
	deviceID := c.Param("device_id")

	if err := h.identityService.Unlink(c.Request.Context(), customerID, deviceID); err != nil {
		response.FromError(c, err, "failed to unlink device")
		return
	}

	response.Success(c, http.StatusOK, "device unlinked", nil)
}

// RotatePasscode regenerates the customer's pairing code.
func (h *IdentityHandler) RotatePasscode(c *gin.Context) {
	customerID := c.Param("id")

	code, err := h.identityService.RotatePasscode(c.Request.Context(), customerID)
	if err != nil {
		response.FromError(c, err, "failed to rotate passcode")
		return
	}

	response.Success(c, http.StatusOK, "passcode rotated", customer.RotatePasscodeResponse{
		Passcode: code,
	})
}

// Touch advances the device's last-active timestamp.
func (h *IdentityHandler) Touch(c *gin.Context) {
	customerID := c.Param("id")
	deviceID := c.Param("device_id")

	if err := h.identityService.Touch(c.Request.Context(), customerID, deviceID); err != nil {
		response.FromError(c, err, "failed to touch device")
		return
	}

	response.Success(c, http.StatusOK, "device touched", nil)
}
