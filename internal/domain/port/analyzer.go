package port

import (
	"context"

	"mine-guard/internal/domain/entity"
)

// FrameAnalyzer конвейер обнаружения опасностей на одном кадре
type FrameAnalyzer interface {
	// Analyze декодирует кадр, ищет опасности, считает риск и возвращает размеченный JPEG.
	// payload — data URI, base64 или сырые байты изображения.
	Analyze(ctx context.Context, payload []byte, cal entity.Calibration) (*entity.FrameAnalysis, error)
}
