// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"tably-service/internal/domain/customer"
	"tably-service/internal/domain/device"
	xerrors "tably-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, passcode, reward_tokens, created_at, updated_at`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Passcode, &c.RewardTokens, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

// CreateWithDevice inserts the customer and upserts its first device inside
// one transaction, so a failed device step never leaves a half-bound row.
// A passcode collision surfaces as ErrDuplicateEntry for the caller to retry
// with a fresh code.
func (r *CustomerRepository) CreateWithDevice(ctx context.Context, c *customer.Customer, d *device.Device) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO customers (id, passcode) VALUES ($1, $2)
		 RETURNING reward_tokens, created_at, updated_at`,
		c.ID, c.Passcode,
	).Scan(&c.RewardTokens, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "customers_passcode_key") {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	d.CustomerID = c.ID
	if err := upsertDevice(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit customer creation: %w", err)
	}
	return nil
}

// FindByID retrieves a customer by ID.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// FindByPasscode resolves a pairing code to its customer.
func (r *CustomerRepository) FindByPasscode(ctx context.Context, passcode string) (*customer.Customer, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE passcode = $1`, passcode)
	return scanCustomer(row)
}

// FindByDevice resolves a device id to the customer it is currently bound to.
func (r *CustomerRepository) FindByDevice(ctx context.Context, deviceID string) (*customer.Customer, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT c.id, c.passcode, c.reward_tokens, c.created_at, c.updated_at
		 FROM customers c
		 JOIN devices d ON d.customer_id = c.id
		 WHERE d.device_id = $1`, deviceID)
	return scanCustomer(row)
}

// UpdatePasscode swaps the passcode in a single statement: the old value
// stops resolving atomically with the commit. A collision with another
// customer's passcode is ErrDuplicateEntry.
func (r *CustomerRepository) UpdatePasscode(ctx context.Context, id, passcode string) error {
	tag, err := r.db.Pool().Exec(ctx,
		`UPDATE customers SET passcode = $2, updated_at = now() WHERE id = $1`,
		id, passcode)
	if err != nil {
		if isUniqueViolation(err, "customers_passcode_key") {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to update passcode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// DeductTokens performs the conditional decrement in one statement: the
// balance check and the write are atomic with respect to every concurrent
// deduction, and the CHECK constraint backstops non-negativity.
func (r *CustomerRepository) DeductTokens(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.db.Pool().QueryRow(ctx,
		`UPDATE customers
		 SET reward_tokens = reward_tokens - $2, updated_at = now()
		 WHERE id = $1 AND reward_tokens >= $2
		 RETURNING reward_tokens`,
		id, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row matched: either the customer does not exist or the balance
		// is short. Distinguish with a plain existence probe.
		var exists bool
		if probeErr := r.db.Pool().QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id,
		).Scan(&exists); probeErr != nil {
			return 0, fmt.Errorf("failed to probe customer: %w", probeErr)
		}
		if !exists {
			return 0, xerrors.ErrNotFound
		}
		return 0, xerrors.ErrInsufficientBalance
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct tokens: %w", err)
	}
	return balance, nil
}

// GrantTokens credits the balance in a single increment.
func (r *CustomerRepository) GrantTokens(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.db.Pool().QueryRow(ctx,
		`UPDATE customers
		 SET reward_tokens = reward_tokens + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING reward_tokens`,
		id, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, xerrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to grant tokens: %w", err)
	}
	return balance, nil
}
