// Package file реализует хранилище снимков в одном JSON документе на диске.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ftcscout/scout-backend/internal/domain"
)

// Store реализует storage.Store поверх одного JSON файла
type Store struct {
	path   string
	logger *slog.Logger
}

// New создает файловое хранилище, при необходимости создавая каталог данных
func New(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Load читает снимок из файла. Отсутствующий файл означает пустое
// хранилище; нечитаемый документ тоже заменяется пустым снимком,
// чтобы поврежденные данные не блокировали сервис.
func (s *Store) Load(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, s.path, err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("Snapshot file is corrupt, starting from an empty snapshot",
			"path", s.path, "error", err)
		return domain.NewSnapshot(), nil
	}

	snapshot.Normalize()
	return &snapshot, nil
}

// Save атомарно записывает снимок: сначала во временный файл рядом с
// целевым, затем rename поверх старого документа.
func (s *Store) Save(_ context.Context, snapshot *domain.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write snapshot: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close snapshot: %v", domain.ErrStorage, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace snapshot: %v", domain.ErrStorage, err)
	}
	return nil
}
