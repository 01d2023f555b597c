package api

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const downloadTTL = 10 * time.Minute

// exportArtifact 一次导出生成的 xlsx 文件
type exportArtifact struct {
	path      string
	name      string
	records   int
	expiresAt time.Time
}

// exportDownloadStore 导出文件的一次性下载令牌；过期条目连同文件一起清理
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportArtifact
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportArtifact),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(path, name string, records int, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	token := uuid.NewString()
	s.items[token] = exportArtifact{path: path, name: name, records: records, expiresAt: now.Add(ttl)}
	return token
}

// take 取出并作废令牌
func (s *exportDownloadStore) take(token string) (exportArtifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())

	a, ok := s.items[token]
	if ok {
		delete(s.items, token)
	}
	return a, ok
}

func (s *exportDownloadStore) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *exportDownloadStore) sweepLocked(now time.Time) {
	for token, a := range s.items {
		if now.After(a.expiresAt) {
			_ = os.Remove(a.path)
			delete(s.items, token)
		}
	}
}
