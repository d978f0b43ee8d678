// Package memory реализует хранилище снимков в памяти процесса.
// Используется в тестах и в режиме разработки без персистентности.
package memory

import (
	"context"
	"sync"

	"github.com/ftcscout/scout-backend/internal/domain"
)

// Store реализует storage.Store поверх снимка в памяти.
// Load и Save работают с глубокими копиями: изменения загруженного
// снимка не видны в хранилище до явного Save.
type Store struct {
	mu       sync.Mutex
	snapshot *domain.Snapshot
}

// New создает пустое хранилище в памяти
func New() *Store {
	return &Store{snapshot: domain.NewSnapshot()}
}

// Load возвращает глубокую копию текущего снимка
func (s *Store) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone(), nil
}

// Save замещает текущий снимок глубокой копией переданного.
// Несовпадение версии снимка означает проигранную гонку записи.
func (s *Store) Save(_ context.Context, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Version != s.snapshot.Version {
		return domain.ErrConflictRetry
	}

	saved := snapshot.Clone()
	saved.Version++
	s.snapshot = saved
	return nil
}
