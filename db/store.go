package db

import (
	"context"
	"fmt"
	"sync"

	"qfmwidget/config"
)

// KVStore 持久化键值存储
// 播放器偏好和歌单缓存都通过它读写
type KVStore interface {
	// Get 读取键值，键不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// 存储驱动
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

// Open 根据配置打开对应驱动的存储
func Open(cfg *config.Config) (KVStore, error) {
	var (
		store KVStore
		err   error
	)
	switch cfg.StoreDriver {
	case DriverMemory:
		store = NewMemoryStore()
	case DriverSQLite, "":
		var s *GormStore
		if s, err = OpenSQLiteStore(cfg.SQLitePath); err == nil {
			store = s
		}
	case DriverMySQL:
		var s *GormStore
		if s, err = OpenMySQLStore(cfg); err == nil {
			store = s
		}
	case DriverRedis:
		var s *RedisStore
		if s, err = ConnectRedisStore(cfg); err == nil {
			store = s
		}
	default:
		err = fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// MemoryStore 进程内存储，用于测试和禁用持久化的场景
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len 当前键数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
