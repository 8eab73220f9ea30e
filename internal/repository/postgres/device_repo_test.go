package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"tably-service/internal/domain/device"
)

type capturedRow struct{}

func (capturedRow) Scan(dest ...any) error {
	now := time.Now().UTC()
	for _, d := range dest {
		if ts, ok := d.(*time.Time); ok {
			*ts = now
		}
	}
	return nil
}

type capturingQuerier struct {
	args []any
}

func (q *capturingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.args = args
	return capturedRow{}
}

func TestUpsertDeviceNormalizesNilTraits(t *testing.T) {
	q := &capturingQuerier{}

	// traits is a NOT NULL column and a nil slice would encode as SQL NULL.
	d := &device.Device{DeviceID: "dev_bare", CustomerID: "cus_1"}
	require.NoError(t, upsertDevice(context.Background(), q, d))

	require.Len(t, q.args, 7)
	require.Equal(t, []string{}, q.args[5])
	require.Equal(t, []string{}, d.Fingerprint.Traits)
}

func TestUpsertDevicePreservesTraits(t *testing.T) {
	q := &capturingQuerier{}

	d := &device.Device{
		DeviceID:   "dev_full",
		CustomerID: "cus_1",
		Fingerprint: device.Fingerprint{
			Browser: "Firefox",
			Traits:  []string{"Firefox", "Linux", "desktop"},
		},
	}
	require.NoError(t, upsertDevice(context.Background(), q, d))
	require.Equal(t, []string{"Firefox", "Linux", "desktop"}, q.args[5])
	require.False(t, d.RegisteredAt.IsZero())
}
