package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/storage"
)

// ScoutingService handles the match-observation record store. Records
// are opaque JSON payloads keyed by the composite record ID; the service
// never interprets payload contents.
type ScoutingService struct {
	store storage.Store
	mu    *sync.Mutex
}

// NewScoutingService creates a new ScoutingService.
// mu must be the same mutex handed to the engines.
func NewScoutingService(store storage.Store, mu *sync.Mutex) *ScoutingService {
	return &ScoutingService{store: store, mu: mu}
}

// SaveRecord upserts a record payload under a validated composite ID
func (s *ScoutingService) SaveRecord(ctx context.Context, id string, payload json.RawMessage) (domain.RecordID, error) {
	recordID, err := domain.ParseRecordID(id)
	if err != nil {
		return domain.RecordID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return domain.RecordID{}, err
	}

	snapshot.ScoutingData[id] = payload

	if err := s.store.Save(ctx, snapshot); err != nil {
		return domain.RecordID{}, err
	}
	return recordID, nil
}

// ListRecords returns records filtered by team number and/or author.
// Empty filters match everything. Records with unparseable keys are
// skipped when a filter is set.
func (s *ScoutingService) ListRecords(ctx context.Context, teamNumber, userID string) (map[string]json.RawMessage, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if teamNumber == "" && userID == "" {
		return snapshot.ScoutingData, nil
	}

	records := make(map[string]json.RawMessage)
	for id, payload := range snapshot.ScoutingData {
		recordID, err := domain.ParseRecordID(id)
		if err != nil {
			continue
		}
		if teamNumber != "" && recordID.TeamNumber != teamNumber {
			continue
		}
		if userID != "" && recordID.UserID != userID {
			continue
		}
		records[id] = payload
	}
	return records, nil
}

// DeleteRecord removes a record by its composite ID
func (s *ScoutingService) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	if _, ok := snapshot.ScoutingData[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(snapshot.ScoutingData, id)

	return s.store.Save(ctx, snapshot)
}

// DumpAll returns the complete store snapshot for the admin data dump
func (s *ScoutingService) DumpAll(ctx context.Context) (*domain.Snapshot, error) {
	return s.store.Load(ctx)
}
