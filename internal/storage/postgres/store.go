// Package postgres реализует хранилище снимков в PostgreSQL: весь документ
// лежит в одной JSONB строке со счетчиком версий для optimistic locking.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftcscout/scout-backend/internal/domain"
)

// Store реализует storage.Store поверх PostgreSQL
type Store struct {
	db *pgxpool.Pool
}

// New создает хранилище и при необходимости создает схему
func New(ctx context.Context, db *pgxpool.Pool) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureSchema создает таблицу снимков. CHECK (id = 1) гарантирует,
// что документ всегда ровно один.
func (s *Store) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id         smallint PRIMARY KEY CHECK (id = 1),
			version    bigint NOT NULL,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Load читает снимок и его версию. Отсутствие строки означает пустое хранилище.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	query := `SELECT version, data FROM snapshots WHERE id = 1`

	var version int64
	var data []byte
	err := s.db.QueryRow(ctx, query).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("%w: load snapshot: %v", domain.ErrStorage, err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", domain.ErrStorage, err)
	}

	snapshot.Normalize()
	snapshot.Version = version
	return &snapshot, nil
}

// Save записывает снимок compare-and-swap'ом по версии: перезапись
// чужой более свежей версии невозможна, вызывающий получает
// domain.ErrConflictRetry и должен повторить цикл load-modify-save.
func (s *Store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", domain.ErrStorage, err)
	}

	if snapshot.Version == 0 {
		query := `
			INSERT INTO snapshots (id, version, data)
			VALUES (1, 1, $1)
			ON CONFLICT (id) DO NOTHING
		`
		result, err := s.db.Exec(ctx, query, data)
		if err != nil {
			return fmt.Errorf("%w: insert snapshot: %v", domain.ErrStorage, err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConflictRetry
		}
		return nil
	}

	query := `
		UPDATE snapshots
		SET version = version + 1, data = $1, updated_at = now()
		WHERE id = 1 AND version = $2
	`
	result, err := s.db.Exec(ctx, query, data, snapshot.Version)
	if err != nil {
		return fmt.Errorf("%w: update snapshot: %v", domain.ErrStorage, err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConflictRetry
	}
	return nil
}
