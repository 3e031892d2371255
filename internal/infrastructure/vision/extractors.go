//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

// Extractor анализатор одного вида опасности. Растр только читается.
type Extractor interface {
	Kind() entity.HazardType
	Extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) ([]entity.Detection, error)
}

// CrackExtractor ищет вытянутые контуры на карте границ Canny.
type CrackExtractor struct{}

func (CrackExtractor) Kind() entity.HazardType { return entity.HazardCrack }

func (CrackExtractor) Extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) ([]entity.Detection, error) {
	gray := grayscale(raster)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(cal.Crack.CannyLow), float32(cal.Crack.CannyHigh))

	return crackDetections(edges, cal.Crack), nil
}

func crackDetections(edges gocv.Mat, cal entity.CrackCalibration) []entity.Detection {
	var out []entity.Detection
	for _, s := range findShapes(edges) {
		if d, ok := crackFromShape(s, cal); ok {
			out = append(out, d)
		}
	}
	return out
}

// LooseRockExtractor ищет пятна камней среднего размера после порога Оцу.
type LooseRockExtractor struct{}

func (LooseRockExtractor) Kind() entity.HazardType { return entity.HazardLooseRock }

func (LooseRockExtractor) Extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) ([]entity.Detection, error) {
	gray := grayscale(raster)
	defer gray.Close()

	// Подавляем мелкий шум перед порогом.
	blur := gocv.NewMat()
	defer blur.Close()
	k := cal.LooseRock.BlurKernel
	gocv.GaussianBlur(gray, &blur, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blur, &mask, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	return looseRockDetections(mask, cal.LooseRock), nil
}

func looseRockDetections(mask gocv.Mat, cal entity.LooseRockCalibration) []entity.Detection {
	var out []entity.Detection
	for _, s := range findShapes(mask) {
		if d, ok := looseRockFromShape(s, cal); ok {
			out = append(out, d)
		}
	}
	return out
}

// StructuralDamageExtractor ищет крупные неровные области: низкие пороги Canny и дилатация
// склеивают разорванные границы. Отдаёт не больше одной детекции.
type StructuralDamageExtractor struct{}

func (StructuralDamageExtractor) Kind() entity.HazardType { return entity.HazardStructuralDamage }

func (StructuralDamageExtractor) Extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) ([]entity.Detection, error) {
	c := cal.StructuralDamage

	gray := grayscale(raster)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(c.CannyLow), float32(c.CannyHigh))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(c.DilateKernel, c.DilateKernel))
	defer kernel.Close()

	dilated := edges.Clone()
	defer dilated.Close()
	for i := 0; i < c.DilateIterations; i++ {
		gocv.Dilate(dilated, &dilated, kernel)
	}

	return structuralDetections(dilated, c), nil
}

func structuralDetections(mask gocv.Mat, cal entity.StructuralDamageCalibration) []entity.Detection {
	if d, ok := firstStructuralDamage(findShapes(mask), cal); ok {
		return []entity.Detection{d}
	}
	return nil
}

// SensorExtractor подключает внешний датчик к конвейеру как обычный экстрактор.
type SensorExtractor struct {
	kind   entity.HazardType
	sensor port.HazardSensor
}

// NewSensorExtractor оборачивает датчик.
func NewSensorExtractor(kind entity.HazardType, sensor port.HazardSensor) *SensorExtractor {
	return &SensorExtractor{kind: kind, sensor: sensor}
}

func (e *SensorExtractor) Kind() entity.HazardType { return e.kind }

func (e *SensorExtractor) Extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) ([]entity.Detection, error) {
	size := entity.FrameSize{Width: raster.Cols(), Height: raster.Rows()}
	readings, err := e.sensor.Read(ctx, size, cal)
	if err != nil {
		return nil, err
	}
	if err := checkSensorReadings(e.kind, size, readings); err != nil {
		return nil, err
	}
	return readings, nil
}
