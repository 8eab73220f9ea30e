// internal/domain/activity/entity.go
package activity

import "time"

type Type string

const (
	TypeView    Type = "view"
	TypeCart    Type = "cart"
	TypeOrder   Type = "order"
	TypeBooking Type = "booking"
)

// Valid reports whether t is one of the closed set of activity types.
func (t Type) Valid() bool {
	switch t {
	case TypeView, TypeCart, TypeOrder, TypeBooking:
		return true
	}
	return false
}

// Record is an append-only activity entry. Attribution is stamped at write
// time: customer_id stays on the record even after the writing device is
// unlinked.
type Record struct {
	ID         string                 `json:"id" db:"id"`
	CustomerID string                 `json:"customer_id" db:"customer_id"`
	DeviceID   string                 `json:"device_id" db:"device_id"`
	BusinessID string                 `json:"business_id,omitempty" db:"business_id"`
	Type       Type                   `json:"type" db:"activity_type"`
	Payload    map[string]interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// Order and Booking rows are owned by the ordering subsystem; this subsystem
// reads them through their customer_id attribution column only.
type Order struct {
	ID         string    `json:"id" db:"id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	Status     string    `json:"status" db:"status"`
	TotalCents int64     `json:"total_cents" db:"total_cents"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Booking struct {
	ID           string    `json:"id" db:"id"`
	CustomerID   string    `json:"customer_id" db:"customer_id"`
	BusinessID   string    `json:"business_id" db:"business_id"`
	PartySize    int       `json:"party_size" db:"party_size"`
	ScheduledFor time.Time `json:"scheduled_for" db:"scheduled_for"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
