// internal/domain/customer/entity.go
package customer

import "time"

// Customer is the server-side profile one or more devices pair with.
// The passcode is a convenience pairing code, not a secret: it is shown to
// every device bound to the profile so the owner can pair another one.
type Customer struct {
	ID           string    `json:"id" db:"id"`
	Passcode     string    `json:"passcode" db:"passcode"`
	RewardTokens int64     `json:"reward_tokens" db:"reward_tokens"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
