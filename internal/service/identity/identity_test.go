package identity

import (
	"context"
	"testing"
	"time"

	"tably-service/internal/domain/customer"
	"tably-service/internal/domain/device"
	xerrors "tably-service/internal/pkg/errors"
	"tably-service/internal/service/passcode"
	"tably-service/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCustomerStore struct {
	customers map[string]*customer.Customer
	byDevice  map[string]string // device id → customer id

	createErrs []error // popped per CreateWithDevice call
	created    int
}

func (f *fakeCustomerStore) CreateWithDevice(_ context.Context, c *customer.Customer, d *device.Device) error {
	var err error
	if len(f.createErrs) > 0 {
		err, f.createErrs = f.createErrs[0], f.createErrs[1:]
	}
	if err != nil {
		return err
	}
	if f.customers == nil {
		f.customers = map[string]*customer.Customer{}
	}
	if f.byDevice == nil {
		f.byDevice = map[string]string{}
	}
	c.CreatedAt = time.Now()
	f.customers[c.ID] = c
	d.CustomerID = c.ID
	f.byDevice[d.DeviceID] = c.ID
	f.created++
	return nil
}

func (f *fakeCustomerStore) FindByID(_ context.Context, id string) (*customer.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerStore) FindByDevice(_ context.Context, deviceID string) (*customer.Customer, error) {
	if cid, ok := f.byDevice[deviceID]; ok {
		return f.customers[cid], nil
	}
	return nil, xerrors.ErrNotFound
}

type fakeDeviceStore struct {
	devices map[string]*device.Device // keyed by device id
}

func (f *fakeDeviceStore) Upsert(_ context.Context, d *device.Device) error {
	if f.devices == nil {
		f.devices = map[string]*device.Device{}
	}
	now := time.Now()
	if existing, ok := f.devices[d.DeviceID]; ok {
		d.RegisteredAt = existing.RegisteredAt
		if existing.LastActiveAt.After(now) {
			d.LastActiveAt = existing.LastActiveAt
		} else {
			d.LastActiveAt = now
		}
	} else {
		d.RegisteredAt = now
		d.LastActiveAt = now
	}
	copied := *d
	f.devices[d.DeviceID] = &copied
	return nil
}

func (f *fakeDeviceStore) ListByCustomer(_ context.Context, customerID string) ([]device.Device, error) {
	out := []device.Device{}
	for _, d := range f.devices {
		if d.CustomerID == customerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDeviceStore) Delete(_ context.Context, customerID, deviceID string) error {
	d, ok := f.devices[deviceID]
	if !ok {
		return xerrors.ErrNotFound
	}
	if d.CustomerID != customerID {
		return xerrors.ErrNotOwned
	}
	delete(f.devices, deviceID)
	return nil
}

func (f *fakeDeviceStore) Touch(_ context.Context, customerID, deviceID string) error {
	d, ok := f.devices[deviceID]
	if !ok || d.CustomerID != customerID {
		return xerrors.ErrNotFound
	}
	d.LastActiveAt = time.Now()
	return nil
}

type fakeCache struct {
	entries     map[string]*customer.Customer
	invalidated []string
}

func (f *fakeCache) Get(_ context.Context, deviceID string) (*customer.Customer, bool) {
	c, ok := f.entries[deviceID]
	return c, ok
}

func (f *fakeCache) Set(_ context.Context, deviceID string, c *customer.Customer) {
	if f.entries == nil {
		f.entries = map[string]*customer.Customer{}
	}
	f.entries[deviceID] = c
}

func (f *fakeCache) Invalidate(_ context.Context, deviceIDs ...string) {
	f.invalidated = append(f.invalidated, deviceIDs...)
	for _, id := range deviceIDs {
		delete(f.entries, id)
	}
}

type fakeNotifier struct {
	events []ws.Event
}

func (f *fakeNotifier) Publish(ev ws.Event) { f.events = append(f.events, ev) }

type fakeRotator struct {
	code string
	err  error
}

func (f *fakeRotator) Rotate(context.Context, string) (string, error) { return f.code, f.err }

func newService(customers *fakeCustomerStore, devices *fakeDeviceStore, cache *fakeCache, notifier *fakeNotifier, rotator *fakeRotator) *Service {
	if rotator == nil {
		rotator = &fakeRotator{code: "111111"}
	}
	return NewService(customers, devices, cache, notifier, rotator, zap.NewNop())
}

func TestRegisterCreatesCustomerAndDevice(t *testing.T) {
	customers := &fakeCustomerStore{}
	svc := newService(customers, &fakeDeviceStore{}, &fakeCache{}, &fakeNotifier{}, nil)

	c, d, err := svc.Register(context.Background(), "dev_1", device.Fingerprint{Browser: "Chrome"}, "Chrome on Windows")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.True(t, passcode.Valid(c.Passcode))
	assert.Equal(t, c.ID, d.CustomerID)
	assert.Equal(t, "dev_1", d.DeviceID)
}

func TestRegisterRetriesPasscodeCollision(t *testing.T) {
	customers := &fakeCustomerStore{createErrs: []error{xerrors.ErrDuplicateEntry}}
	svc := newService(customers, &fakeDeviceStore{}, &fakeCache{}, &fakeNotifier{}, nil)

	_, _, err := svc.Register(context.Background(), "dev_1", device.Fingerprint{}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, customers.created)
}

func TestRegisterExhaustsPasscodeBudget(t *testing.T) {
	errs := make([]error, passcode.MaxAttempts)
	for i := range errs {
		errs[i] = xerrors.ErrDuplicateEntry
	}
	svc := newService(&fakeCustomerStore{createErrs: errs}, &fakeDeviceStore{}, &fakeCache{}, &fakeNotifier{}, nil)

	_, _, err := svc.Register(context.Background(), "dev_1", device.Fingerprint{}, "")
	assert.ErrorIs(t, err, xerrors.ErrPasscodeExhausted)
}

func TestRegisterRejectsEmptyDeviceID(t *testing.T) {
	svc := newService(&fakeCustomerStore{}, &fakeDeviceStore{}, &fakeCache{}, &fakeNotifier{}, nil)

	_, _, err := svc.Register(context.Background(), "", device.Fingerprint{}, "")
	assert.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestLinkBindsSecondDeviceAndNotifies(t *testing.T) {
	customers := &fakeCustomerStore{
		customers: map[string]*customer.Customer{"cus_1": {ID: "cus_1", Passcode: "123456"}},
	}
	devices := &fakeDeviceStore{}
	cache := &fakeCache{}
	notifier := &fakeNotifier{}
	svc := newService(customers, devices, cache, notifier, nil)

	d, err := svc.Link(context.Background(), "cus_1", "dev_2", device.Fingerprint{Platform: "iPhone"}, "Safari on iPhone")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", d.CustomerID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, ws.EventDeviceLinked, notifier.events[0].Type)
	assert.Equal(t, "cus_1", notifier.events[0].CustomerID)
	assert.Contains(t, cache.invalidated, "dev_2")
}

func TestLinkUnknownCustomer(t *testing.T) {
	svc := newService(&fakeCustomerStore{}, &fakeDeviceStore{}, &fakeCache{}, &fakeNotifier{}, nil)

	_, err := svc.Link(context.Background(), "cus_missing", "dev_1", device.Fingerprint{}, "")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestLinkRebindsFromOtherCustomerWithoutUnlink(t *testing.T) {
	customers := &fakeCustomerStore{
		customers: map[string]*customer.Customer{
			"cus_1": {ID: "cus_1"},
			"cus_2": {ID: "cus_2"},
		},
	}
	devices := &fakeDeviceStore{}
	svc := newService(customers, devices, &fakeCache{}, &fakeNotifier{}, nil)

	_, err := svc.Link(context.Background(), "cus_1", "dev_1", device.Fingerprint{}, "")
	require.NoError(t, err)

	d, err := svc.Link(context.Background(), "cus_2", "dev_1", device.Fingerprint{}, "")
	require.NoError(t, err)
	assert.Equal(t, "cus_2", d.CustomerID)
	assert.Len(t, devices.devices, 1, "re-linking must never duplicate the row")
}

func TestUnlinkOwnershipCheck(t *testing.T) {
	customers := &fakeCustomerStore{
		customers: map[string]*customer.Customer{"cus_1": {ID: "cus_1"}, "cus_2": {ID: "cus_2"}},
	}
	devices := &fakeDeviceStore{}
	notifier := &fakeNotifier{}
	svc := newService(customers, devices, &fakeCache{}, notifier, nil)

	_, err := svc.Link(context.Background(), "cus_1", "dev_1", device.Fingerprint{}, "")
	require.NoError(t, err)

	err = svc.Unlink(context.Background(), "cus_2", "dev_1")
	assert.ErrorIs(t, err, xerrors.ErrNotOwned)

	err = svc.Unlink(context.Background(), "cus_1", "dev_1")
	require.NoError(t, err)

	// The binding is gone now.
	_, err = svc.GetByDevice(context.Background(), "dev_1")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	err = svc.Unlink(context.Background(), "cus_1", "dev_1")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestGetByDeviceUsesCache(t *testing.T) {
	cached := &customer.Customer{ID: "cus_cached"}
	cache := &fakeCache{entries: map[string]*customer.Customer{"dev_1": cached}}
	svc := newService(&fakeCustomerStore{}, &fakeDeviceStore{}, cache, &fakeNotifier{}, nil)

	c, err := svc.GetByDevice(context.Background(), "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_cached", c.ID)
}

func TestGetByDevicePopulatesCacheOnMiss(t *testing.T) {
	customers := &fakeCustomerStore{
		customers: map[string]*customer.Customer{"cus_1": {ID: "cus_1"}},
		byDevice:  map[string]string{"dev_1": "cus_1"},
	}
	cache := &fakeCache{}
	svc := newService(customers, &fakeDeviceStore{}, cache, &fakeNotifier{}, nil)

	c, err := svc.GetByDevice(context.Background(), "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", c.ID)
	_, ok := cache.entries["dev_1"]
	assert.True(t, ok)
}

func TestRotatePasscodeInvalidatesDeviceCache(t *testing.T) {
	customers := &fakeCustomerStore{
		customers: map[string]*customer.Customer{"cus_1": {ID: "cus_1"}},
	}
	devices := &fakeDeviceStore{}
	cache := &fakeCache{}
	svc := newService(customers, devices, cache, &fakeNotifier{}, &fakeRotator{code: "654321"})

	_, err := svc.Link(context.Background(), "cus_1", "dev_1", device.Fingerprint{}, "")
	require.NoError(t, err)
	_, err = svc.Link(context.Background(), "cus_1", "dev_2", device.Fingerprint{}, "")
	require.NoError(t, err)
	cache.invalidated = nil

	code, err := svc.RotatePasscode(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.ElementsMatch(t, []string{"dev_1", "dev_2"}, cache.invalidated)
}
