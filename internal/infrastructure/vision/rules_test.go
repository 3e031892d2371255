package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"mine-guard/internal/domain/entity"
)

func TestCrackFromShape(t *testing.T) {
	cal := entity.DefaultCalibration().Crack

	d, ok := crackFromShape(contourShape{Area: 400, Rect: image.Rect(10, 10, 60, 20)}, cal)
	require.True(t, ok)
	require.Equal(t, entity.HazardCrack, d.Type)
	require.Equal(t, entity.SeverityHigh, d.Severity)
	require.InDelta(t, 0.4, d.Confidence, 1e-9)
	require.Equal(t, entity.BBox{X1: 10, Y1: 10, X2: 60, Y2: 20}, d.BBox)

	// узкая и высокая тоже трещина
	d, ok = crackFromShape(contourShape{Area: 300, Rect: image.Rect(0, 0, 5, 50)}, cal)
	require.True(t, ok)
	require.InDelta(t, 0.3, d.Confidence, 1e-9)

	// площадь ограничена сверху
	d, ok = crackFromShape(contourShape{Area: 5000, Rect: image.Rect(0, 0, 400, 20)}, cal)
	require.True(t, ok)
	require.InDelta(t, 0.9, d.Confidence, 1e-9)
}

func TestCrackFromShape_Rejects(t *testing.T) {
	cal := entity.DefaultCalibration().Crack

	cases := map[string]contourShape{
		"noise floor":   {Area: 100, Rect: image.Rect(0, 0, 50, 5)},
		"square":        {Area: 900, Rect: image.Rect(0, 0, 30, 30)},
		"aspect 3":      {Area: 900, Rect: image.Rect(0, 0, 60, 20)},
		"aspect 0.3":    {Area: 900, Rect: image.Rect(0, 0, 30, 100)},
		"zero height":   {Area: 900, Rect: image.Rect(0, 0, 60, 0)},
		"moderate wide": {Area: 900, Rect: image.Rect(0, 0, 50, 20)},
	}
	for name, s := range cases {
		_, ok := crackFromShape(s, cal)
		require.False(t, ok, name)
	}
}

func TestLooseRockFromShape(t *testing.T) {
	cal := entity.DefaultCalibration().LooseRock

	d, ok := looseRockFromShape(contourShape{Area: 1000, Rect: image.Rect(20, 20, 61, 46)}, cal)
	require.True(t, ok)
	require.Equal(t, entity.HazardLooseRock, d.Type)
	require.Equal(t, entity.SeverityMedium, d.Severity)
	require.InDelta(t, 0.6667, d.Confidence, 1e-3)

	d, ok = looseRockFromShape(contourShape{Area: 1900, Rect: image.Rect(0, 0, 50, 40)}, cal)
	require.True(t, ok)
	require.InDelta(t, 0.8, d.Confidence, 1e-9)

	_, ok = looseRockFromShape(contourShape{Area: 200, Rect: image.Rect(0, 0, 20, 10)}, cal)
	require.False(t, ok)
	_, ok = looseRockFromShape(contourShape{Area: 2000, Rect: image.Rect(0, 0, 50, 40)}, cal)
	require.False(t, ok)
}

func TestFirstStructuralDamage_ScanOrder(t *testing.T) {
	cal := entity.DefaultCalibration().StructuralDamage

	shapes := []contourShape{
		{Area: 3200, Rect: image.Rect(10, 150, 90, 190)},
		{Area: 400, Rect: image.Rect(5, 5, 25, 25)},
		{Area: 1200, Rect: image.Rect(120, 20, 180, 40)},
		{Area: 1500, Rect: image.Rect(60, 20, 110, 50)},
	}
	sortShapes(shapes)

	require.Equal(t, image.Rect(5, 5, 25, 25), shapes[0].Rect)
	require.Equal(t, image.Rect(60, 20, 110, 50), shapes[1].Rect)
	require.Equal(t, image.Rect(120, 20, 180, 40), shapes[2].Rect)
	require.Equal(t, image.Rect(10, 150, 90, 190), shapes[3].Rect)

	d, ok := firstStructuralDamage(shapes, cal)
	require.True(t, ok)
	require.Equal(t, entity.HazardStructuralDamage, d.Type)
	require.Equal(t, entity.BBox{X1: 60, Y1: 20, X2: 110, Y2: 50}, d.BBox)
	require.InDelta(t, 0.75, d.Confidence, 1e-9)
}

func TestFirstStructuralDamage_NoQualifyingContours(t *testing.T) {
	cal := entity.DefaultCalibration().StructuralDamage

	_, ok := firstStructuralDamage(nil, cal)
	require.False(t, ok)

	_, ok = firstStructuralDamage([]contourShape{{Area: 500, Rect: image.Rect(0, 0, 25, 20)}}, cal)
	require.False(t, ok)
}

func TestSortShapes_TieBreakByArea(t *testing.T) {
	shapes := []contourShape{
		{Area: 10, Rect: image.Rect(0, 0, 5, 2)},
		{Area: 20, Rect: image.Rect(0, 0, 10, 2)},
	}
	sortShapes(shapes)
	require.Equal(t, 20.0, shapes[0].Area)
}

func TestLabelText(t *testing.T) {
	require.Equal(t, "Crack: 0.40", labelText(entity.NewDetection(entity.HazardCrack, 0.4, entity.BBox{})))
	require.Equal(t, "Loose Rock: 0.67", labelText(entity.NewDetection(entity.HazardLooseRock, 1000.0/1500.0, entity.BBox{})))
	require.Equal(t, "Structural Damage: 0.90", labelText(entity.NewDetection(entity.HazardStructuralDamage, 0.9, entity.BBox{})))
	require.Equal(t, "Gas Leak: 0.87", labelText(entity.NewDetection(entity.HazardGasLeak, 0.8712, entity.BBox{})))
}

func TestCategoryColor(t *testing.T) {
	require.Equal(t, color.RGBA{R: 255, A: 255}, categoryColor(entity.HazardCrack))
	require.Equal(t, color.RGBA{R: 255, G: 165, A: 255}, categoryColor(entity.HazardLooseRock))
	require.Equal(t, color.RGBA{B: 255, A: 255}, categoryColor(entity.HazardGasLeak))
	require.Equal(t, color.RGBA{R: 255, G: 255, A: 255}, categoryColor(entity.HazardStructuralDamage))
	require.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, categoryColor(entity.HazardType("unknown")))
}

func TestPlaceLabel_AboveBox(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	box := image.Rect(100, 100, 200, 150)

	bg, origin := placeLabel(box, image.Pt(80, 12), bounds)
	require.Equal(t, image.Rect(100, 78, 180, 100), bg)
	require.Equal(t, image.Pt(100, 95), origin)
}

func TestPlaceLabel_FlipsInsideNearTopEdge(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	box := image.Rect(100, 5, 200, 150)

	bg, origin := placeLabel(box, image.Pt(80, 12), bounds)
	require.Equal(t, image.Rect(100, 5, 180, 27), bg)
	require.Equal(t, image.Pt(100, 22), origin)
}

func TestPlaceLabel_ShiftsLeftNearRightEdge(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	box := image.Rect(600, 100, 640, 150)

	bg, origin := placeLabel(box, image.Pt(80, 12), bounds)
	require.Equal(t, image.Rect(560, 78, 640, 100), bg)
	require.Equal(t, image.Pt(560, 95), origin)
}

func TestPlaceLabel_ClippedWhenWiderThanFrame(t *testing.T) {
	bounds := image.Rect(0, 0, 60, 40)
	box := image.Rect(0, 0, 60, 40)

	bg, _ := placeLabel(box, image.Pt(120, 12), bounds)
	require.Equal(t, image.Rect(0, 0, 60, 22), bg)
	require.True(t, bg.In(bounds))
}

func TestQualityWarnings(t *testing.T) {
	q := &entity.FrameQuality{EdgeRatio: 0, OverexposedRatio: 0.5, UnderexposedRatio: 0.1, GlareRatio: 0.01}
	qualityWarnings(q, DefaultQualityLimits())
	require.Len(t, q.Warnings, 2)
	require.Contains(t, q.Warnings[0], "blurry")
	require.Contains(t, q.Warnings[1], "overexposed")

	ok := &entity.FrameQuality{EdgeRatio: 0.05}
	qualityWarnings(ok, DefaultQualityLimits())
	require.Empty(t, ok.Warnings)
}

func TestCheckSensorReadings(t *testing.T) {
	size := entity.FrameSize{Width: 640, Height: 480}
	gas := func(b entity.BBox) entity.Detection { return entity.NewDetection(entity.HazardGasLeak, 0.9, b) }

	require.NoError(t, checkSensorReadings(entity.HazardGasLeak, size, nil))
	require.NoError(t, checkSensorReadings(entity.HazardGasLeak, size, []entity.Detection{
		gas(entity.BBox{X1: 540, Y1: 380, X2: 640, Y2: 480}),
	}))

	cases := map[string]entity.Detection{
		"degenerate": gas(entity.BBox{X1: 10, Y1: 10, X2: 10, Y2: 50}),
		"off right":  gas(entity.BBox{X1: 600, Y1: 0, X2: 700, Y2: 100}),
		"negative":   gas(entity.BBox{X1: -5, Y1: 0, X2: 95, Y2: 100}),
		"wrong type": entity.NewDetection(entity.HazardCrack, 0.4, entity.BBox{X1: 0, Y1: 0, X2: 10, Y2: 10}),
	}
	for name, d := range cases {
		require.Error(t, checkSensorReadings(entity.HazardGasLeak, size, []entity.Detection{d}), name)
	}
}
