package vision

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mine-guard/internal/domain/entity"
)

// Оформление разметки.
const (
	boxThickness        = 2
	labelFontScale      = 0.5
	labelThickness      = 2
	labelPadding        = 10 // высота подложки = высота текста + labelPadding
	labelBaselineOffset = 5  // базовая линия текста выше нижнего края подложки
)

var labelTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// labelText формирует подпись вида "Loose Rock: 0.67".
func labelText(d entity.Detection) string {
	// cases.Caser хранит состояние, поэтому создаём на каждый вызов.
	name := cases.Title(language.English).String(strings.ReplaceAll(string(d.Type), "_", " "))
	return fmt.Sprintf("%s: %.2f", name, d.Confidence)
}

// categoryColor переводит цвет категории из таблицы в RGBA.
func categoryColor(t entity.HazardType) color.RGBA {
	c, err := colorful.Hex(entity.CategoryOf(t).Color)
	if err != nil {
		c, _ = colorful.Hex(entity.FallbackCategory.Color)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// placeLabel считает подложку подписи и точку начала текста.
// По умолчанию подложка стоит над верхним краем рамки. Если она вылезает за верх кадра,
// подпись переносится внутрь рамки под её верхний край; если за правый край, сдвигается влево.
// В конце подложка обрезается по границам кадра.
func placeLabel(box image.Rectangle, text image.Point, bounds image.Rectangle) (bg image.Rectangle, origin image.Point) {
	h := text.Y + labelPadding
	bg = image.Rect(box.Min.X, box.Min.Y-h, box.Min.X+text.X, box.Min.Y)
	origin = image.Pt(box.Min.X, box.Min.Y-labelBaselineOffset)

	if bg.Min.Y < bounds.Min.Y {
		bg = image.Rect(box.Min.X, box.Min.Y, box.Min.X+text.X, box.Min.Y+h)
		origin = image.Pt(box.Min.X, bg.Max.Y-labelBaselineOffset)
	}

	if over := bg.Max.X - bounds.Max.X; over > 0 {
		shift := min(over, bg.Min.X-bounds.Min.X)
		if shift > 0 {
			bg = bg.Sub(image.Pt(shift, 0))
			origin.X -= shift
		}
	}
	if under := bounds.Min.X - bg.Min.X; under > 0 {
		bg = bg.Add(image.Pt(under, 0))
		origin.X += under
	}

	return bg.Intersect(bounds), origin
}
