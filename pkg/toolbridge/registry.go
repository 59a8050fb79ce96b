package toolbridge

import (
	"sync"
)

// Registry holds the stub set derived from the latest discovery run.
// Last discovery wins: ReplaceAll swaps the whole set, there is no
// per-stub versioning.
type Registry interface {
	ReplaceAll(stubs []FunctionStub)
	Get(name string) (FunctionStub, bool)
	List() []FunctionStub
	Names() []string
	Len() int
}

type memoryRegistry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]FunctionStub
}

func NewRegistry() Registry {
	return &memoryRegistry{byName: make(map[string]FunctionStub)}
}

// ReplaceAll implements Registry.
func (m *memoryRegistry) ReplaceAll(stubs []FunctionStub) {
	order := make([]string, 0, len(stubs))
	byName := make(map[string]FunctionStub, len(stubs))
	for _, s := range stubs {
		if _, dup := byName[s.Name]; !dup {
			order = append(order, s.Name)
		}
		byName[s.Name] = s
	}

	m.mu.Lock()
	m.order = order
	m.byName = byName
	m.mu.Unlock()
}

// Get implements Registry.
func (m *memoryRegistry) Get(name string) (FunctionStub, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byName[name]
	return s, ok
}

// List implements Registry. Stubs come back in registration order.
func (m *memoryRegistry) List() []FunctionStub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FunctionStub, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byName[name])
	}
	return out
}

// Names implements Registry.
func (m *memoryRegistry) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Len implements Registry.
func (m *memoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}
