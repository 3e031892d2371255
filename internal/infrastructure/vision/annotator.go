//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"mine-guard/internal/domain/entity"
)

const labelFont = gocv.FontHersheySimplex

// Annotate рисует рамки и подписи детекций на копии растра и возвращает её.
// Исходный растр не меняется; вызывающий закрывает результат.
func Annotate(raster gocv.Mat, detections []entity.Detection) gocv.Mat {
	annotated := raster.Clone()
	bounds := image.Rect(0, 0, annotated.Cols(), annotated.Rows())

	// Порядок рисования совпадает с порядком детекций, поздние рисуются поверх.
	for _, d := range detections {
		c := categoryColor(d.Type)
		box := image.Rect(d.BBox.X1, d.BBox.Y1, d.BBox.X2, d.BBox.Y2)
		gocv.Rectangle(&annotated, box, c, boxThickness)

		label := labelText(d)
		size := gocv.GetTextSize(label, labelFont, labelFontScale, labelThickness)
		bg, origin := placeLabel(box, size, bounds)
		if !bg.Empty() {
			gocv.Rectangle(&annotated, bg, c, -1)
		}
		gocv.PutText(&annotated, label, origin, labelFont, labelFontScale, labelTextColor, labelThickness)
	}

	return annotated
}

// assessQuality считает доли резких границ, пересвета, недосвета и бликов.
func assessQuality(raster gocv.Mat, limits QualityLimits) *entity.FrameQuality {
	gray := grayscale(raster)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(raster, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}

	q := &entity.FrameQuality{
		EdgeRatio:         ratioOfMask(edges),
		OverexposedRatio:  ratioOfMask(bright),
		UnderexposedRatio: ratioOfMask(dark),
	}

	if len(channels) >= 3 {
		// Блик: низкая насыщенность при высокой яркости.
		lowSat := gocv.NewMat()
		defer lowSat.Close()
		gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

		highVal := gocv.NewMat()
		defer highVal.Close()
		gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

		glare := gocv.NewMat()
		defer glare.Close()
		gocv.BitwiseAnd(lowSat, highVal, &glare)
		q.GlareRatio = ratioOfMask(glare)
	}

	qualityWarnings(q, limits)
	return q
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}
