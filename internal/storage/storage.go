package storage

import (
	"context"

	"github.com/ftcscout/scout-backend/internal/domain"
)

// Store определяет границу персистентного хранилища: снимок состояния
// читается и записывается целиком, как один документ
type Store interface {
	// Load читает полный снимок состояния. Отсутствующие данные заменяются
	// пустым снимком; ошибка возвращается только при сбое ввода-вывода.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save атомарно записывает полный снимок состояния. Бэкенды с
	// optimistic locking возвращают domain.ErrConflictRetry при устаревшей
	// версии снимка.
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}
