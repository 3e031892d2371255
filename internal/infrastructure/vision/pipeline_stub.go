//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
	"mine-guard/internal/infrastructure/codec"
)

// Pipeline заглушка конвейера для сборки без OpenCV.
type Pipeline struct {
	sensor      port.HazardSensor
	jpegQuality int
}

// NewPipeline создаёт конвейер-заглушку (без OpenCV).
func NewPipeline(sensor port.HazardSensor, jpegQuality int) *Pipeline {
	return &Pipeline{sensor: sensor, jpegQuality: jpegQuality}
}

// Analyze проверяет, что кадр декодируется, и возвращает ErrBackendDisabled.
func (p *Pipeline) Analyze(ctx context.Context, payload []byte, cal entity.Calibration) (*entity.FrameAnalysis, error) {
	_ = ctx
	_ = cal
	if _, err := codec.DecodeFrame(payload); err != nil {
		return nil, err
	}
	return nil, ErrBackendDisabled
}

var _ port.FrameAnalyzer = (*Pipeline)(nil)
