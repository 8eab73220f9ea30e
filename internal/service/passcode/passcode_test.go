package passcode

import (
	"context"
	"strconv"
	"testing"

	"tably-service/internal/domain/customer"
	xerrors "tably-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCustomerStore struct {
	byPasscode map[string]*customer.Customer

	updateErrs []error // popped per UpdatePasscode call
	updated    []string
}

func (f *fakeCustomerStore) FindByPasscode(_ context.Context, code string) (*customer.Customer, error) {
	if c, ok := f.byPasscode[code]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerStore) UpdatePasscode(_ context.Context, id, code string) error {
	var err error
	if len(f.updateErrs) > 0 {
		err, f.updateErrs = f.updateErrs[0], f.updateErrs[1:]
	}
	if err == nil {
		f.updated = append(f.updated, code)
	}
	return err
}

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := Generate()
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("123456"))
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("1234567"))
	assert.False(t, Valid("12345a"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("12 456"))
}

func TestLookupMalformedIsValidationError(t *testing.T) {
	a := NewAuthority(&fakeCustomerStore{}, zap.NewNop())

	_, err := a.Lookup(context.Background(), "abc")
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	_, err = a.Lookup(context.Background(), "654321")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestLookupResolves(t *testing.T) {
	store := &fakeCustomerStore{byPasscode: map[string]*customer.Customer{
		"123456": {ID: "cus_1", Passcode: "123456"},
	}}
	a := NewAuthority(store, zap.NewNop())

	c, err := a.Lookup(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", c.ID)
}

func TestRotateRetriesOnCollision(t *testing.T) {
	store := &fakeCustomerStore{
		updateErrs: []error{xerrors.ErrDuplicateEntry, xerrors.ErrDuplicateEntry, nil},
	}
	a := NewAuthority(store, zap.NewNop())

	code, err := a.Rotate(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.True(t, Valid(code))
	assert.Len(t, store.updated, 1)
}

func TestRotateExhaustsRetryBudget(t *testing.T) {
	errs := make([]error, MaxAttempts)
	for i := range errs {
		errs[i] = xerrors.ErrDuplicateEntry
	}
	a := NewAuthority(&fakeCustomerStore{updateErrs: errs}, zap.NewNop())

	_, err := a.Rotate(context.Background(), "cus_1")
	assert.ErrorIs(t, err, xerrors.ErrPasscodeExhausted)
}

func TestRotateSurfacesStoreFailure(t *testing.T) {
	a := NewAuthority(&fakeCustomerStore{updateErrs: []error{xerrors.ErrNotFound}}, zap.NewNop())

	_, err := a.Rotate(context.Background(), "cus_missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
