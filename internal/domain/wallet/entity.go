// internal/domain/wallet/entity.go
package wallet

// Balance is a customer's spendable reward-token balance. Tokens are whole
// units and the balance is never negative.
type Balance struct {
	CustomerID string `json:"customer_id"`
	Tokens     int64  `json:"tokens"`
}

type DeductRequest struct {
	Amount int64 `json:"amount"`
}

type GrantRequest struct {
	Amount int64 `json:"amount"`
}

type BalanceResponse struct {
	NewBalance int64 `json:"new_balance"`
}
