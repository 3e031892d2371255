package entity

import (
	"encoding/json"
	"fmt"
)

// BBox прямоугольник в пиксельных координатах исходного кадра.
// В JSON сериализуется массивом [x1, y1, x2, y2].
type BBox struct {
	X1 int // левый край
	Y1 int // верхний край
	X2 int // правый край, X2 > X1
	Y2 int // нижний край, Y2 > Y1
}

// Width возвращает ширину рамки.
func (b BBox) Width() int { return b.X2 - b.X1 }

// Height возвращает высоту рамки.
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// Valid проверяет, что рамка не вырождена.
func (b BBox) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X1, b.Y1, b.X2, b.Y2})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("bbox: expected 4 coordinates, got %d", len(raw))
	}
	*b = BBox{X1: raw[0], Y1: raw[1], X2: raw[2], Y2: raw[3]}
	return nil
}

// Detection одно наблюдение опасности на кадре. После создания не меняется.
type Detection struct {
	Type       HazardType `json:"type"`
	Confidence float64    `json:"confidence"`
	BBox       BBox       `json:"bbox"`
	Severity   Severity   `json:"severity"`
}

// NewDetection создаёт детекцию, тяжесть берётся из таблицы категорий.
func NewDetection(t HazardType, confidence float64, box BBox) Detection {
	return Detection{
		Type:       t,
		Confidence: confidence,
		BBox:       box,
		Severity:   CategoryOf(t).Severity,
	}
}
