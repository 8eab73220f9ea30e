// internal/service/passcode/passcode.go
package passcode

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"strconv"

	"tably-service/internal/domain/customer"
	xerrors "tably-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// MaxAttempts bounds the uniqueness-retry loop. With a ~900k keyspace a
// collision streak this long means the customer table is pathologically
// full; surfacing ErrPasscodeExhausted beats spinning.
const MaxAttempts = 5

var passcodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Generate returns a uniformly random 6-digit pairing code in
// [100000, 999999]. Uniqueness is the database's job, not this function's.
func Generate() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand reading from the OS never fails in practice; a broken
		// entropy source is unrecoverable here.
		panic("passcode: entropy source unavailable: " + err.Error())
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}

// Valid reports whether s is exactly 6 ASCII digits.
func Valid(s string) bool {
	return passcodePattern.MatchString(s)
}

// CustomerStore is the slice of customer persistence the authority needs.
type CustomerStore interface {
	FindByPasscode(ctx context.Context, passcode string) (*customer.Customer, error)
	UpdatePasscode(ctx context.Context, id, passcode string) error
}

// Authority issues, rotates and resolves pairing codes.
type Authority struct {
	customers CustomerStore
	logger    *zap.Logger
}

func NewAuthority(customers CustomerStore, logger *zap.Logger) *Authority {
	return &Authority{customers: customers, logger: logger}
}

// Rotate replaces the customer's passcode with a fresh one. Each attempt is
// a single UPDATE, so the old code stops resolving atomically with the new
// one starting to. Under concurrent rotation the last commit wins and only
// that value resolves afterwards.
func (a *Authority) Rotate(ctx context.Context, customerID string) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code := Generate()
		err := a.customers.UpdatePasscode(ctx, customerID, code)
		if err == nil {
			a.logger.Info("passcode rotated",
				zap.String("customer_id", customerID),
				zap.Int("attempts", attempt+1))
			return code, nil
		}
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			continue
		}
		return "", err
	}

	a.logger.Error("passcode generation exhausted",
		zap.String("customer_id", customerID),
		zap.Int("attempts", MaxAttempts))
	return "", xerrors.ErrPasscodeExhausted
}

// Lookup resolves a passcode to its customer. A malformed code is a
// validation error, distinct from an unknown one.
func (a *Authority) Lookup(ctx context.Context, code string) (*customer.Customer, error) {
	if !Valid(code) {
		return nil, xerrors.ErrValidation
	}
	return a.customers.FindByPasscode(ctx, code)
}
