package vision

import (
	"fmt"
	"image"
	"math"
	"sort"

	"mine-guard/internal/domain/entity"
)

// contourShape то, что экстракторам нужно от контура: площадь и описывающий прямоугольник.
type contourShape struct {
	Area float64
	Rect image.Rectangle
}

func (s contourShape) bbox() entity.BBox {
	return entity.BBox{X1: s.Rect.Min.X, Y1: s.Rect.Min.Y, X2: s.Rect.Max.X, Y2: s.Rect.Max.Y}
}

// aspectRatio возвращает w/h, для h=0 возвращает 0.
func (s contourShape) aspectRatio() float64 {
	if s.Rect.Dy() == 0 {
		return 0
	}
	return float64(s.Rect.Dx()) / float64(s.Rect.Dy())
}

// sortShapes задаёт порядок обхода контуров независимо от версии OpenCV:
// сверху вниз по Y, затем слева направо по X, при совпадении сначала больший по площади.
func sortShapes(shapes []contourShape) {
	sort.SliceStable(shapes, func(i, j int) bool {
		a, b := shapes[i], shapes[j]
		if a.Rect.Min.Y != b.Rect.Min.Y {
			return a.Rect.Min.Y < b.Rect.Min.Y
		}
		if a.Rect.Min.X != b.Rect.Min.X {
			return a.Rect.Min.X < b.Rect.Min.X
		}
		return a.Area > b.Area
	})
}

func scaledConfidence(area, scale, limit float64) float64 {
	return math.Min(limit, area/scale)
}

// crackFromShape трещины вытянуты: либо широкие и плоские, либо узкие и высокие.
func crackFromShape(s contourShape, cal entity.CrackCalibration) (entity.Detection, bool) {
	if s.Area <= cal.MinArea || s.Rect.Dy() == 0 {
		return entity.Detection{}, false
	}
	aspect := s.aspectRatio()
	if aspect <= cal.WideAspect && aspect >= cal.NarrowAspect {
		return entity.Detection{}, false
	}
	confidence := scaledConfidence(s.Area, cal.ConfidenceScale, cal.ConfidenceCap)
	return entity.NewDetection(entity.HazardCrack, confidence, s.bbox()), true
}

func looseRockFromShape(s contourShape, cal entity.LooseRockCalibration) (entity.Detection, bool) {
	if s.Area <= cal.MinArea || s.Area >= cal.MaxArea {
		return entity.Detection{}, false
	}
	confidence := scaledConfidence(s.Area, cal.ConfidenceScale, cal.ConfidenceCap)
	return entity.NewDetection(entity.HazardLooseRock, confidence, s.bbox()), true
}

// firstStructuralDamage берёт первый подходящий контур; shapes должны быть упорядочены sortShapes.
func firstStructuralDamage(shapes []contourShape, cal entity.StructuralDamageCalibration) (entity.Detection, bool) {
	for _, s := range shapes {
		if s.Area > cal.MinArea {
			confidence := scaledConfidence(s.Area, cal.ConfidenceScale, cal.ConfidenceCap)
			return entity.NewDetection(entity.HazardStructuralDamage, confidence, s.bbox()), true
		}
	}
	return entity.Detection{}, false
}

// checkSensorReadings отбрасывает показания датчика, которые нельзя нарисовать на кадре:
// чужой тип, вырожденная рамка или рамка за границами кадра.
func checkSensorReadings(kind entity.HazardType, size entity.FrameSize, readings []entity.Detection) error {
	frame := entity.BBox{X2: size.Width, Y2: size.Height}
	for _, d := range readings {
		if d.Type != kind {
			return fmt.Errorf("sensor reported %q, expected %q", d.Type, kind)
		}
		if !d.BBox.Valid() {
			return fmt.Errorf("sensor reported degenerate bbox %v", d.BBox)
		}
		if d.BBox.X1 < frame.X1 || d.BBox.Y1 < frame.Y1 || d.BBox.X2 > frame.X2 || d.BBox.Y2 > frame.Y2 {
			return fmt.Errorf("sensor bbox %v is outside %dx%d frame", d.BBox, size.Width, size.Height)
		}
	}
	return nil
}
