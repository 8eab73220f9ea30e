// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"tably-service/internal/domain/activity"
)

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert appends one immutable activity record.
func (r *ActivityRepository) Insert(ctx context.Context, rec *activity.Record) error {
	var payloadJSON []byte
	var err error
	if rec.Payload != nil {
		payloadJSON, err = json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	err = r.db.Pool().QueryRow(ctx,
		`INSERT INTO activities (id, customer_id, device_id, business_id, activity_type, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		rec.ID, rec.CustomerID, rec.DeviceID, rec.BusinessID, rec.Type, payloadJSON,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// List returns a customer's activity records, newest first, optionally
// scoped to one business. Scoping is by the written customer_id, never by
// the registry's current bindings.
func (r *ActivityRepository) List(ctx context.Context, customerID, businessID string) ([]activity.Record, error) {
	query := `SELECT id, customer_id, device_id, business_id, activity_type, payload, created_at
	          FROM activities WHERE customer_id = $1`
	args := []interface{}{customerID}
	if businessID != "" {
		query += ` AND business_id = $2`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	records := []activity.Record{}
	for rows.Next() {
		var rec activity.Record
		var payloadJSON []byte
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.DeviceID, &rec.BusinessID,
			&rec.Type, &payloadJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &rec.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListOrders reads the ordering subsystem's orders by customer attribution.
func (r *ActivityRepository) ListOrders(ctx context.Context, customerID, businessID string) ([]activity.Order, error) {
	query := `SELECT id, customer_id, business_id, status, total_cents, created_at
	          FROM orders WHERE customer_id = $1`
	args := []interface{}{customerID}
	if businessID != "" {
		query += ` AND business_id = $2`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []activity.Order{}
	for rows.Next() {
		var o activity.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.BusinessID, &o.Status,
			&o.TotalCents, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListBookings reads bookings by customer attribution.
func (r *ActivityRepository) ListBookings(ctx context.Context, customerID, businessID string) ([]activity.Booking, error) {
	query := `SELECT id, customer_id, business_id, party_size, scheduled_for, status, created_at
	          FROM bookings WHERE customer_id = $1`
	args := []interface{}{customerID}
	if businessID != "" {
		query += ` AND business_id = $2`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []activity.Booking{}
	for rows.Next() {
		var b activity.Booking
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.BusinessID, &b.PartySize,
			&b.ScheduledFor, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
