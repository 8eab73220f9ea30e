// internal/pkg/deviceid/store.go
package deviceid

import (
	"os"
	"strings"
	"sync"
)

// FileStore persists the device id in a single file.
type FileStore struct {
	Path string
}

func (s *FileStore) Get() (string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", ErrNotStored
	}
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNotStored
	}
	return id, nil
}

func (s *FileStore) Set(id string) error {
	return os.WriteFile(s.Path, []byte(id+"\n"), 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemStore is an in-memory Store, mainly for tests. The failure toggles
// simulate an unavailable medium.
type MemStore struct {
	mu      sync.Mutex
	id      string
	FailGet bool
	FailSet bool
}

func (s *MemStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet {
		return "", os.ErrPermission
	}
	if s.id == "" {
		return "", ErrNotStored
	}
	return s.id, nil
}

func (s *MemStore) Set(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet {
		return os.ErrPermission
	}
	s.id = id
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
