// internal/service/identity/identity.go
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"tably-service/internal/domain/customer"
	"tably-service/internal/domain/device"
	"tably-service/internal/observability"
	xerrors "tably-service/internal/pkg/errors"
	"tably-service/internal/service/passcode"
	"tably-service/internal/ws"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CustomerStore is the customer persistence the registry needs.
type CustomerStore interface {
	CreateWithDevice(ctx context.Context, c *customer.Customer, d *device.Device) error
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
	FindByDevice(ctx context.Context, deviceID string) (*customer.Customer, error)
}

// DeviceStore is the device persistence the registry needs.
type DeviceStore interface {
	Upsert(ctx context.Context, d *device.Device) error
	ListByCustomer(ctx context.Context, customerID string) ([]device.Device, error)
	Delete(ctx context.Context, customerID, deviceID string) error
	Touch(ctx context.Context, customerID, deviceID string) error
}

// CustomerCache caches device→customer resolution; all methods are
// best-effort.
type CustomerCache interface {
	Get(ctx context.Context, deviceID string) (*customer.Customer, bool)
	Set(ctx context.Context, deviceID string, c *customer.Customer)
	Invalidate(ctx context.Context, deviceIDs ...string)
}

// PairingNotifier pushes device-set changes to a customer's open devices.
type PairingNotifier interface {
	Publish(ev ws.Event)
}

// PasscodeRotator is the slice of the passcode authority the registry needs
// when rotating on behalf of a customer.
type PasscodeRotator interface {
	Rotate(ctx context.Context, customerID string) (string, error)
}

// Service is the device registry: the many-devices-to-one-customer binding
// and its lifecycle.
type Service struct {
	customers CustomerStore
	devices   DeviceStore
	cache     CustomerCache
	notifier  PairingNotifier
	rotator   PasscodeRotator
	logger    *zap.Logger
}

func NewService(customers CustomerStore, devices DeviceStore, cache CustomerCache, notifier PairingNotifier, rotator PasscodeRotator, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		devices:   devices,
		cache:     cache,
		notifier:  notifier,
		rotator:   rotator,
		logger:    logger,
	}
}

// Register creates a new customer profile and binds the device to it. The
// passcode-uniqueness retry wraps the whole transactional insert: a
// collision rolls everything back and reruns with a fresh code.
func (s *Service) Register(ctx context.Context, deviceID string, fp device.Fingerprint, displayName string) (*customer.Customer, *device.Device, error) {
	if deviceID == "" {
		return nil, nil, xerrors.ErrValidation
	}

	d := &device.Device{
		DeviceID:    deviceID,
		Fingerprint: fp,
		DisplayName: displayName,
	}

	for attempt := 0; attempt < passcode.MaxAttempts; attempt++ {
		c := &customer.Customer{
			ID:       newCustomerID(),
			Passcode: passcode.Generate(),
		}
		err := s.customers.CreateWithDevice(ctx, c, d)
		if err == nil {
			s.cache.Invalidate(ctx, deviceID)
			observability.RecordPairing("register", "ok")
			s.logger.Info("customer registered",
				zap.String("customer_id", c.ID),
				zap.String("device_id", deviceID),
				zap.Int("attempts", attempt+1))
			return c, d, nil
		}
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			continue
		}
		observability.RecordPairing("register", "error")
		return nil, nil, err
	}

	observability.RecordPairing("register", "exhausted")
	return nil, nil, xerrors.ErrPasscodeExhausted
}

// Link binds (or re-binds) a device to an existing customer. One atomic
// upsert keyed on device_id: concurrent calls never duplicate a row and the
// last commit wins. Re-pairing a device away from another customer needs no
// prior unlink.
func (s *Service) Link(ctx context.Context, customerID, deviceID string, fp device.Fingerprint, displayName string) (*device.Device, error) {
	if deviceID == "" {
		return nil, xerrors.ErrValidation
	}

	// Devices must always reference an existing customer.
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	d := &device.Device{
		DeviceID:    deviceID,
		CustomerID:  customerID,
		Fingerprint: fp,
		DisplayName: displayName,
	}
	if err := s.devices.Upsert(ctx, d); err != nil {
		observability.RecordPairing("link", "error")
		return nil, err
	}

	s.cache.Invalidate(ctx, deviceID)
	observability.RecordPairing("link", "ok")
	s.notifier.Publish(ws.Event{
		Type:        ws.EventDeviceLinked,
		CustomerID:  customerID,
		DeviceID:    deviceID,
		DisplayName: d.DisplayName,
		At:          time.Now().UTC(),
	})

	s.logger.Info("device linked",
		zap.String("customer_id", customerID),
		zap.String("device_id", deviceID))
	return d, nil
}

// Unlink removes the binding, only for the owning customer. The customer row
// stays even when its last device goes away.
func (s *Service) Unlink(ctx context.Context, customerID, deviceID string) error {
	if err := s.devices.Delete(ctx, customerID, deviceID); err != nil {
		if errors.Is(err, xerrors.ErrNotOwned) {
			observability.RecordPairing("unlink", "not_owned")
		}
		return err
	}

	s.cache.Invalidate(ctx, deviceID)
	observability.RecordPairing("unlink", "ok")
	s.notifier.Publish(ws.Event{
		Type:       ws.EventDeviceUnlinked,
		CustomerID: customerID,
		DeviceID:   deviceID,
		At:         time.Now().UTC(),
	})

	s.logger.Info("device unlinked",
		zap.String("customer_id", customerID),
		zap.String("device_id", deviceID))
	return nil
}

// ListDevices returns the customer's devices, newest registration first.
func (s *Service) ListDevices(ctx context.Context, customerID string) ([]device.Device, error) {
	return s.devices.ListByCustomer(ctx, customerID)
}

// Touch advances the device's last-active timestamp.
func (s *Service) Touch(ctx context.Context, customerID, deviceID string) error {
	return s.devices.Touch(ctx, customerID, deviceID)
}

// GetByDevice resolves a device id to its customer, cache first.
func (s *Service) GetByDevice(ctx context.Context, deviceID string) (*customer.Customer, error) {
	if deviceID == "" {
		return nil, xerrors.ErrValidation
	}

	if c, ok := s.cache.Get(ctx, deviceID); ok {
		return c, nil
	}

	c, err := s.customers.FindByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, deviceID, c)
	return c, nil
}

// RotatePasscode swaps the customer's pairing code and drops every cached
// device→customer entry that still carries the old one.
func (s *Service) RotatePasscode(ctx context.Context, customerID string) (string, error) {
	code, err := s.rotator.Rotate(ctx, customerID)
	if err != nil {
		return "", err
	}

	devices, listErr := s.devices.ListByCustomer(ctx, customerID)
	if listErr != nil {
		s.logger.Warn("failed to list devices for cache invalidation",
			zap.String("customer_id", customerID), zap.Error(listErr))
		return code, nil
	}
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.DeviceID)
	}
	s.cache.Invalidate(ctx, ids...)
	return code, nil
}

// GetByID retrieves a customer profile.
func (s *Service) GetByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	return s.customers.FindByID(ctx, customerID)
}

func newCustomerID() string {
	return "cus_" + ulid.MustNew(ulid.Now(), rand.Reader).String()
}
