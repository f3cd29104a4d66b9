package routing

import (
	"sync"
	"time"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.DedupCache = (*MockDedupCache)(nil)

// MockDedupCache 用于测试的去重缓存，不做过期处理
type MockDedupCache struct {
	mu      sync.Mutex
	entries map[types.MessageID]MockDedupEntry
}

// MockDedupEntry 记录登记参数
type MockDedupEntry struct {
	TTL      time.Duration
	Retained bool
}

// NewMockDedupCache 创建模拟去重缓存
func NewMockDedupCache() *MockDedupCache {
	return &MockDedupCache{entries: make(map[types.MessageID]MockDedupEntry)}
}

// IsDuplicate 实现 interfaces.DedupCache
func (m *MockDedupCache) IsDuplicate(id types.MessageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

// Add 实现 interfaces.DedupCache
func (m *MockDedupCache) Add(id types.MessageID, ttl time.Duration, retained bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		m.entries[id] = MockDedupEntry{TTL: ttl, Retained: retained}
	}
}

// MarkSeen 实现 interfaces.DedupCache
func (m *MockDedupCache) MarkSeen(id types.MessageID, ttl time.Duration, retained bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; ok {
		return true
	}
	m.entries[id] = MockDedupEntry{TTL: ttl, Retained: retained}
	return false
}

// Remove 实现 interfaces.DedupCache
func (m *MockDedupCache) Remove(id types.MessageID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Entry 返回登记参数
func (m *MockDedupCache) Entry(id types.MessageID) (MockDedupEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}
