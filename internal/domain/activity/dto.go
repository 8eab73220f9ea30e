// internal/domain/activity/dto.go
package activity

type AppendRequest struct {
	DeviceID   string                 `json:"device_id" binding:"required"`
	BusinessID string                 `json:"business_id"`
	Type       Type                   `json:"type" binding:"required"`
	Payload    map[string]interface{} `json:"payload"`
}

type ListResponse struct {
	Activities []Record `json:"activities"`
	Total      int      `json:"total"`
}
