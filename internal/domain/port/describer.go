package port

import (
	"context"

	"mine-guard/internal/domain/entity"
)

// HazardDescriber интерфейс описателя опасностей
type HazardDescriber interface {
	// Describe генерирует текстовое описание найденных опасностей
	Describe(ctx context.Context, analysis *entity.FrameAnalysis) (*entity.HazardSummary, error)
}
