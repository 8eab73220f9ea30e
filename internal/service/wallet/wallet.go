// internal/service/wallet/wallet.go
package wallet

import (
	"context"
	"errors"

	"tably-service/internal/domain/customer"
	"tably-service/internal/domain/wallet"
	"tably-service/internal/observability"
	xerrors "tably-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// TokenStore is the balance persistence. Deduct must be a single atomic
// conditional decrement at the storage layer.
type TokenStore interface {
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
	DeductTokens(ctx context.Context, id string, amount int64) (int64, error)
	GrantTokens(ctx context.Context, id string, amount int64) (int64, error)
}

// Service is the token ledger: a spendable non-negative integer balance per
// customer.
type Service struct {
	store  TokenStore
	logger *zap.Logger
}

func NewService(store TokenStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Balance reads the current token balance.
func (s *Service) Balance(ctx context.Context, customerID string) (wallet.Balance, error) {
	c, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		return wallet.Balance{}, err
	}
	return wallet.Balance{CustomerID: c.ID, Tokens: c.RewardTokens}, nil
}

// Deduct spends tokens. The check and write happen in one statement at the
// store, so two concurrent deductions that together exceed the balance end
// with exactly one success.
func (s *Service) Deduct(ctx context.Context, customerID string, amount int64) (int64, error) {
	if amount <= 0 {
		observability.RecordDeduction("invalid")
		return 0, xerrors.ErrValidation
	}

	balance, err := s.store.DeductTokens(ctx, customerID, amount)
	if err != nil {
		if errors.Is(err, xerrors.ErrInsufficientBalance) {
			observability.RecordDeduction("insufficient")
			return 0, err
		}
		observability.RecordDeduction("error")
		return 0, err
	}

	observability.RecordDeduction("ok")
	s.logger.Info("tokens deducted",
		zap.String("customer_id", customerID),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", balance))
	return balance, nil
}

// Grant credits tokens, the funding side of the ledger.
func (s *Service) Grant(ctx context.Context, customerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, xerrors.ErrValidation
	}

	balance, err := s.store.GrantTokens(ctx, customerID, amount)
	if err != nil {
		return 0, err
	}

	s.logger.Info("tokens granted",
		zap.String("customer_id", customerID),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", balance))
	return balance, nil
}
