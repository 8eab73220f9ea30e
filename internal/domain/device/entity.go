// internal/domain/device/entity.go
package device

import (
	"time"
)

// Fingerprint carries descriptive traits of a browser/device. Display and
// audit only: it is never an authorization factor. Traits maps to a TEXT[]
// column; pgx encodes and decodes []string natively.
type Fingerprint struct {
	Browser     string   `json:"browser" db:"browser"`
	Platform    string   `json:"platform" db:"platform"`
	DeviceClass string   `json:"device_class" db:"device_class"`
	Traits      []string `json:"traits" db:"traits"`
}

// Device is one browser/app instance bound to a customer. DeviceID is the
// binding's primary key: at most one row ever exists per device id.
type Device struct {
	DeviceID     string      `json:"device_id" db:"device_id"`
	CustomerID   string      `json:"customer_id" db:"customer_id"`
	Fingerprint  Fingerprint `json:"fingerprint"`
	DisplayName  string      `json:"display_name" db:"display_name"`
	RegisteredAt time.Time   `json:"registered_at" db:"registered_at"`
	LastActiveAt time.Time   `json:"last_active_at" db:"last_active_at"`
}
