package v1

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

const downloadTTL = 30 * time.Minute

type download struct {
	table     *model.Table
	expiresAt time.Time
}

// downloadStore 抽取结果的临时下载缓存（进程内，按 TTL 过期）
type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
	now   func() time.Time
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
		now:   time.Now,
	}
}

func (s *downloadStore) put(table *model.Table, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	token = uuid.New().String()
	s.items[token] = download{
		table:     table,
		expiresAt: s.now().Add(ttl),
	}
	return token
}

func (s *downloadStore) get(token string) (*model.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[token]
	if !ok {
		return nil, false
	}
	if s.now().After(v.expiresAt) {
		delete(s.items, token)
		return nil, false
	}
	return v.table, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
