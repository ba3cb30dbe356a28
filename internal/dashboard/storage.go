package dashboard

import "sync"

// Storage keys of the persisted client state.
const (
	// ActiveTabKey holds the selector of the last activated tab.
	ActiveTabKey = "jenkins-coverage-activeTab"
	// TrendConfigKey holds the JSON configuration of the trend chart.
	TrendConfigKey = "jenkins-echarts-chart-configuration-coverage-history"
)

// KeyValueStore is the persistent client side key-value storage. Get reports
// false for keys that were never written. Writes overwrite without merging.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// MemoryStore is an in-memory KeyValueStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a MemoryStore seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get implements KeyValueStore.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KeyValueStore.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
