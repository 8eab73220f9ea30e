// internal/repository/postgres/device_repo.go
package postgres

import (
	"context"
	"fmt"

	"tably-service/internal/domain/device"
	xerrors "tably-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// upsertQuerier is satisfied by both pgx.Tx and *pgxpool.Pool.
type upsertQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// upsertDevice binds (or re-binds) a device in a single atomic statement
// keyed on device_id. Concurrent calls for the same device never produce two
// rows; the last commit wins for the binding, while last_active_at only
// moves forward.
func upsertDevice(ctx context.Context, q upsertQuerier, d *device.Device) error {
	// The traits column is NOT NULL; a request without traits arrives nil.
	if d.Fingerprint.Traits == nil {
		d.Fingerprint.Traits = []string{}
	}
	err := q.QueryRow(ctx,
		`INSERT INTO devices (device_id, customer_id, browser, platform, device_class, traits, display_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (device_id) DO UPDATE SET
		   customer_id    = EXCLUDED.customer_id,
		   browser        = EXCLUDED.browser,
		   platform       = EXCLUDED.platform,
		   device_class   = EXCLUDED.device_class,
		   traits         = EXCLUDED.traits,
		   display_name   = EXCLUDED.display_name,
		   last_active_at = GREATEST(devices.last_active_at, now())
		 RETURNING registered_at, last_active_at`,
		d.DeviceID, d.CustomerID, d.Fingerprint.Browser, d.Fingerprint.Platform,
		d.Fingerprint.DeviceClass, d.Fingerprint.Traits, d.DisplayName,
	).Scan(&d.RegisteredAt, &d.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// Upsert binds a device to a customer against the pool.
func (r *DeviceRepository) Upsert(ctx context.Context, d *device.Device) error {
	return upsertDevice(ctx, r.db.Pool(), d)
}

// ListByCustomer returns a customer's devices, newest registration first.
func (r *DeviceRepository) ListByCustomer(ctx context.Context, customerID string) ([]device.Device, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT device_id, customer_id, browser, platform, device_class, traits,
		        display_name, registered_at, last_active_at
		 FROM devices WHERE customer_id = $1
		 ORDER BY registered_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := []device.Device{}
	for rows.Next() {
		var d device.Device
		if err := rows.Scan(&d.DeviceID, &d.CustomerID, &d.Fingerprint.Browser,
			&d.Fingerprint.Platform, &d.Fingerprint.DeviceClass, &d.Fingerprint.Traits,
			&d.DisplayName, &d.RegisteredAt, &d.LastActiveAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Delete removes the binding only when the device belongs to the given
// customer. A device held by another customer is ErrNotOwned, a missing
// device is ErrNotFound.
func (r *DeviceRepository) Delete(ctx context.Context, customerID, deviceID string) error {
	tag, err := r.db.Pool().Exec(ctx,
		`DELETE FROM devices WHERE device_id = $1 AND customer_id = $2`,
		deviceID, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM devices WHERE device_id = $1)`, deviceID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to probe device: %w", err)
	}
	if exists {
		return xerrors.ErrNotOwned
	}
	return xerrors.ErrNotFound
}

// Touch advances last_active_at to now. GREATEST makes it a monotonic
// max-write: a delayed request can never move the timestamp backward.
func (r *DeviceRepository) Touch(ctx context.Context, customerID, deviceID string) error {
	tag, err := r.db.Pool().Exec(ctx,
		`UPDATE devices
		 SET last_active_at = GREATEST(last_active_at, now())
		 WHERE device_id = $1 AND customer_id = $2`,
		deviceID, customerID)
	if err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
