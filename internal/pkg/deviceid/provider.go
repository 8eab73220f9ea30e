// internal/pkg/deviceid/provider.go

// Package deviceid gives a browser/app instance a durable, opaque,
// non-secret identifier. It is the piece of this subsystem that ships with
// the storefront client; the server only ever sees the resulting id.
package deviceid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ErrNotStored is returned by a Store when no identifier has been persisted
// yet. Any other Get error means the medium itself is unavailable.
var ErrNotStored = errors.New("device id not stored")

// Store is the injected persistence medium for the device id. A file, a
// cookie jar, or an in-memory fake can all back it.
type Store interface {
	Get() (string, error)
	Set(id string) error
	Clear() error
}

// Identity tags the id with its durability. Durable is false when the store
// failed and the id lives only in process memory: callers must surface that,
// because an ephemeral id will not survive a restart and pairing is lost.
type Identity struct {
	ID      string `json:"id"`
	Durable bool   `json:"durable"`
}

type Provider struct {
	store Store

	mu        sync.Mutex
	ephemeral string
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// GetOrCreate returns the device's identifier, creating it on first call.
// Idempotent: every call within the store's lifetime returns the same value.
func (p *Provider) GetOrCreate() (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.store.Get()
	switch {
	case err == nil && id != "":
		return Identity{ID: id, Durable: true}, nil
	case err != nil && !errors.Is(err, ErrNotStored):
		// Store unreadable. Keep a stable in-memory id for this process so
		// repeated calls still agree with each other.
		return p.fallback(), nil
	}

	id = newID()
	if err := p.store.Set(id); err != nil {
		p.ephemeral = id
		return Identity{ID: id, Durable: false}, nil
	}
	return Identity{ID: id, Durable: true}, nil
}

// Reset clears the persisted id. The next GetOrCreate mints a fresh one.
func (p *Provider) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ephemeral = ""
	if err := p.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear device id: %w", err)
	}
	return nil
}

func (p *Provider) fallback() Identity {
	if p.ephemeral == "" {
		p.ephemeral = newID()
	}
	return Identity{ID: p.ephemeral, Durable: false}
}

// newID mints an id from time plus crypto entropy. Collisions are
// astronomically unlikely, and the registry's unique device_id key catches
// them server-side anyway.
func newID() string {
	return "dev_" + ulid.MustNew(ulid.Now(), rand.Reader).String()
}
