// internal/domain/customer/dto.go
package customer

import "tably-service/internal/domain/device"

// RegisterRequest creates a fresh customer for the device, or, when Passcode
// is supplied, binds the device to the existing customer it resolves to.
type RegisterRequest struct {
	DeviceID    string             `json:"device_id" binding:"required"`
	Passcode    string             `json:"passcode"`
	Fingerprint device.Fingerprint `json:"fingerprint"`
	DisplayName string             `json:"display_name"`
}

type RegisterResponse struct {
	Customer *Customer      `json:"customer"`
	Device   *device.Device `json:"device"`
}

type RotatePasscodeResponse struct {
	Passcode string `json:"passcode"`
}
