//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"mine-guard/internal/domain/entity"
)

// toRaster превращает декодированное изображение в BGR-растр CV_8UC3.
func toRaster(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), entity.NewDecodeError("convert image to raster", err)
	}
	if err := validateRaster(mat); err != nil {
		mat.Close()
		return gocv.NewMat(), err
	}
	return mat, nil
}

// validateRaster проверяет, что растр непустой и трёхканальный 8-битный.
func validateRaster(raster gocv.Mat) error {
	if raster.Empty() || raster.Rows() <= 0 || raster.Cols() <= 0 {
		return entity.NewDecodeError("empty raster", nil)
	}
	if raster.Type() != gocv.MatTypeCV8UC3 {
		return entity.NewDecodeError(fmt.Sprintf("unsupported raster type %v, want 8-bit 3-channel", raster.Type()), nil)
	}
	return nil
}

func grayscale(raster gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(raster, &gray, gocv.ColorBGRToGray)
	return gray
}

// findShapes извлекает внешние контуры бинарной маски в порядке sortShapes.
func findShapes(mask gocv.Mat) []contourShape {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	shapes := make([]contourShape, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		shapes = append(shapes, contourShape{
			Area: gocv.ContourArea(c),
			Rect: gocv.BoundingRect(c),
		})
	}
	sortShapes(shapes)
	return shapes
}
