package vision

import (
	"errors"
	"fmt"

	"mine-guard/internal/domain/entity"
)

// ErrBackendDisabled сборка без тега gocv не умеет анализировать кадры.
var ErrBackendDisabled = errors.New("gocv build tag is not enabled")

// QualityLimits пороги, после которых отчёт о качестве кадра получает предупреждение.
type QualityLimits struct {
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// DefaultQualityLimits пороги по умолчанию.
func DefaultQualityLimits() QualityLimits {
	return QualityLimits{
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// qualityWarnings заполняет предупреждения. Кадр при этом не отклоняется.
func qualityWarnings(q *entity.FrameQuality, limits QualityLimits) {
	q.Warnings = q.Warnings[:0]
	if q.EdgeRatio < limits.MinSharpnessEdgeRatio {
		q.Warnings = append(q.Warnings, fmt.Sprintf("image is blurry or featureless (edge_ratio=%.4f)", q.EdgeRatio))
	}
	if q.OverexposedRatio > limits.MaxOverexposedRatio {
		q.Warnings = append(q.Warnings, fmt.Sprintf("overexposed image (ratio=%.4f)", q.OverexposedRatio))
	}
	if q.UnderexposedRatio > limits.MaxUnderexposedRatio {
		q.Warnings = append(q.Warnings, fmt.Sprintf("underexposed image (ratio=%.4f)", q.UnderexposedRatio))
	}
	if q.GlareRatio > limits.MaxGlareRatio {
		q.Warnings = append(q.Warnings, fmt.Sprintf("too much glare (ratio=%.4f)", q.GlareRatio))
	}
}
