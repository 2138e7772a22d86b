package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// SyncRecordRepository is an in-memory repository.SyncRecordRepository.
type SyncRecordRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]entity.SyncRecord
}

func NewSyncRecordRepository() *SyncRecordRepository {
	return &SyncRecordRepository{records: make(map[uuid.UUID]entity.SyncRecord)}
}

var _ repository.SyncRecordRepository = (*SyncRecordRepository)(nil)

func (r *SyncRecordRepository) Create(_ context.Context, record *entity.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *SyncRecordRepository) Update(_ context.Context, record *entity.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *SyncRecordRepository) Get(_ context.Context, id string) (*entity.SyncRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[parsed]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (r *SyncRecordRepository) ListRecent(_ context.Context, limit int) ([]entity.SyncRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.SyncRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SyncRecordRepository) ListProcessing(_ context.Context) ([]entity.SyncRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.SyncRecord
	for _, rec := range r.records {
		if rec.State == entity.SyncStateProcessing {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
