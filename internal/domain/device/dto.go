// internal/domain/device/dto.go
package device

type LinkRequest struct {
	DeviceID    string      `json:"device_id" binding:"required"`
	Fingerprint Fingerprint `json:"fingerprint"`
	DisplayName string      `json:"display_name"`
}

type ListResponse struct {
	Devices []Device `json:"devices"`
	Total   int      `json:"total"`
}
