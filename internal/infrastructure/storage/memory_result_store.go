package storage

import (
	"context"
	"sync"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

// MemoryResultStore хранит последние capacity записей истории в памяти
type MemoryResultStore struct {
	mu       sync.RWMutex
	records  []entity.AnalysisRecord // от старых к новым
	capacity int
	nextID   int64
}

// NewMemoryResultStore создаёт хранилище с ограниченной ёмкостью
func NewMemoryResultStore(capacity int) *MemoryResultStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryResultStore{
		records:  make([]entity.AnalysisRecord, 0, capacity),
		capacity: capacity,
	}
}

// Save добавляет запись, вытесняя самую старую при переполнении
func (s *MemoryResultStore) Save(ctx context.Context, record *entity.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID

	stored := *record
	stored.Detections = append([]entity.Detection(nil), record.Detections...)

	if len(s.records) == s.capacity {
		copy(s.records, s.records[1:])
		s.records = s.records[:len(s.records)-1]
	}
	s.records = append(s.records, stored)

	return nil
}

// Latest возвращает последнюю запись
func (s *MemoryResultStore) Latest(ctx context.Context) (*entity.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, port.ErrNoResults
	}
	latest := s.records[len(s.records)-1]
	return &latest, nil
}

// Recent возвращает до limit последних записей, новые первыми
func (s *MemoryResultStore) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]entity.AnalysisRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Проверка реализации интерфейса
var _ port.ResultStore = (*MemoryResultStore)(nil)
