// Package sensor содержит источники детекций, не зависящие от пикселей кадра.
package sensor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"mine-guard/internal/domain/entity"
)

// GasLeakSimulator заглушка датчика газа: с заданной вероятностью сообщает об утечке
// в случайном месте кадра. Заменяется настоящим датчиком через port.HazardSensor.
type GasLeakSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGasLeakSimulator создаёт симулятор с фиксированным зерном (для воспроизводимых прогонов).
func NewGasLeakSimulator(seed uint64) *GasLeakSimulator {
	return &GasLeakSimulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomGasLeakSimulator создаёт симулятор со случайным зерном.
func NewRandomGasLeakSimulator() *GasLeakSimulator {
	return NewGasLeakSimulator(uint64(time.Now().UnixNano()))
}

// Read разыгрывает утечку для кадра указанного размера.
func (s *GasLeakSimulator) Read(ctx context.Context, frame entity.FrameSize, cal entity.Calibration) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := cal.GasLeak
	if frame.Width < g.BoxSize || frame.Height < g.BoxSize {
		return nil, fmt.Errorf("frame %dx%d is smaller than the %dpx leak box", frame.Width, frame.Height, g.BoxSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() >= g.Probability {
		return nil, nil
	}

	// Рамка целиком внутри кадра: x в [0, W-box], y в [0, H-box].
	x := s.rng.IntN(frame.Width - g.BoxSize + 1)
	y := s.rng.IntN(frame.Height - g.BoxSize + 1)
	confidence := g.ConfidenceMin + s.rng.Float64()*g.ConfidenceSpread

	box := entity.BBox{X1: x, Y1: y, X2: x + g.BoxSize, Y2: y + g.BoxSize}
	return []entity.Detection{entity.NewDetection(entity.HazardGasLeak, confidence, box)}, nil
}
