// internal/service/activity/activity.go
package activity

import (
	"context"
	"crypto/rand"

	"tably-service/internal/domain/activity"
	"tably-service/internal/observability"
	xerrors "tably-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Store is the ledger persistence.
type Store interface {
	Insert(ctx context.Context, rec *activity.Record) error
	List(ctx context.Context, customerID, businessID string) ([]activity.Record, error)
	ListOrders(ctx context.Context, customerID, businessID string) ([]activity.Order, error)
	ListBookings(ctx context.Context, customerID, businessID string) ([]activity.Booking, error)
}

// Service is the activity ledger: durable but best-effort history of
// customer actions.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Append records one activity. Telemetry is never allowed to fail the
// action that produced it: storage failures are logged and swallowed, only
// malformed input is rejected so the caller can fix its payload.
func (s *Service) Append(ctx context.Context, customerID, deviceID, businessID string, typ activity.Type, payload map[string]interface{}) error {
	if customerID == "" || deviceID == "" || !typ.Valid() {
		return xerrors.ErrValidation
	}

	rec := &activity.Record{
		ID:         "act_" + ulid.MustNew(ulid.Now(), rand.Reader).String(),
		CustomerID: customerID,
		DeviceID:   deviceID,
		BusinessID: businessID,
		Type:       typ,
		Payload:    payload,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		observability.RecordActivityAppend("error")
		s.logger.Error("failed to append activity",
			zap.String("customer_id", customerID),
			zap.String("device_id", deviceID),
			zap.String("type", string(typ)),
			zap.Error(err))
		return nil
	}

	observability.RecordActivityAppend("ok")
	return nil
}

// Query returns the customer's activity records, newest first. Records
// written under devices since unlinked are included: attribution is
// permanent.
func (s *Service) Query(ctx context.Context, customerID, businessID string) ([]activity.Record, error) {
	if customerID == "" {
		return nil, xerrors.ErrValidation
	}
	return s.store.List(ctx, customerID, businessID)
}

// ListOrders returns orders attributed to the customer.
func (s *Service) ListOrders(ctx context.Context, customerID, businessID string) ([]activity.Order, error) {
	if customerID == "" {
		return nil, xerrors.ErrValidation
	}
	return s.store.ListOrders(ctx, customerID, businessID)
}

// ListBookings returns bookings attributed to the customer.
func (s *Service) ListBookings(ctx context.Context, customerID, businessID string) ([]activity.Booking, error) {
	if customerID == "" {
		return nil, xerrors.ErrValidation
	}
	return s.store.ListBookings(ctx, customerID, businessID)
}
