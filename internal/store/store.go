package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// OrdersSnapshot is the persisted form of the open-orders registry.
type OrdersSnapshot struct {
	Orders    []string  `json:"orders"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists adapter state as JSON files under a root directory, one
// atomically replaced file per concern.
type Store struct {
	root string
	mu   sync.Mutex
}

func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("state dir required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) SaveOrders(orders []string) error {
	snapshot := OrdersSnapshot{
		Orders:    append([]string(nil), orders...),
		UpdatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.ordersPath(), snapshot)
}

func (s *Store) LoadOrders() ([]string, bool, error) {
	data, err := os.ReadFile(s.ordersPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var snapshot OrdersSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, err
	}
	return snapshot.Orders, true, nil
}

func (s *Store) ordersPath() string {
	return filepath.Join(s.root, "orders.json")
}

func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return fsyncDirBestEffort(dir)
}

func fsyncDirBestEffort(dir string) error {
	// Improves rename durability across crashes; failure is not fatal.
	d, err := os.Open(dir)
	if err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("state dir fsync skipped")
		return nil
	}
	if err := d.Sync(); err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("state dir fsync failed")
	}
	return d.Close()
}
