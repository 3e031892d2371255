package port

import (
	"context"
	"errors"

	"mine-guard/internal/domain/entity"
)

// ErrNoResults в хранилище ещё нет ни одной записи.
var ErrNoResults = errors.New("no analysis results yet")

// ResultStore история обработанных кадров
type ResultStore interface {
	// Save сохраняет запись и проставляет ей ID
	Save(ctx context.Context, record *entity.AnalysisRecord) error

	// Latest возвращает последнюю запись или ErrNoResults
	Latest(ctx context.Context) (*entity.AnalysisRecord, error)

	// Recent возвращает до limit последних записей, новые первыми
	Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error)
}
