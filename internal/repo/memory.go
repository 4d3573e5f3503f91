package meta

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sir_venger/multipart_lite/internal/models"
)

// MemoryStore хранит манифесты только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu      sync.RWMutex
	uploads map[string]models.Upload
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{uploads: map[string]models.Upload{}}
}

// Get возвращает манифест по id или models.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	if !ok {
		return models.Upload{}, models.ErrNotFound
	}
	return u.Clone(), nil
}

// Save записывает (или обновляет) манифест целиком.
func (s *MemoryStore) Save(_ context.Context, u models.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[u.ID] = u.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.uploads, id)
	return nil
}

// List возвращает манифесты, созданные раньше olderThan (все при нулевом времени),
// от старых к новым.
func (s *MemoryStore) List(_ context.Context, olderThan time.Time) ([]models.Upload, error) {
	s.mu.RLock()
	out := make([]models.Upload, 0, len(s.uploads))
	for _, u := range s.uploads {
		if olderThan.IsZero() || u.CreatedAt.Before(olderThan) {
			out = append(out, u.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Close() {}
