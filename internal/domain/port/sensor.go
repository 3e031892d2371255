package port

import (
	"context"

	"mine-guard/internal/domain/entity"
)

// HazardSensor источник детекций, не зависящий от пикселей кадра (датчик газа и т.п.).
// Сейчас реализован только симулятором.
type HazardSensor interface {
	Read(ctx context.Context, frame entity.FrameSize, cal entity.Calibration) ([]entity.Detection, error)
}
