//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"log"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
	"mine-guard/internal/infrastructure/codec"
)

// Pipeline конвейер: декодирование, экстракторы, риск, разметка, JPEG.
type Pipeline struct {
	extractors  []Extractor
	limits      QualityLimits
	jpegQuality int
}

// NewPipeline собирает конвейер со штатными экстракторами. Датчик газа подключается последним;
// если sensor == nil, утечки газа не ищутся.
func NewPipeline(sensor port.HazardSensor, jpegQuality int) *Pipeline {
	extractors := []Extractor{
		CrackExtractor{},
		LooseRockExtractor{},
		StructuralDamageExtractor{},
	}
	if sensor != nil {
		extractors = append(extractors, NewSensorExtractor(entity.HazardGasLeak, sensor))
	}
	return NewPipelineWithExtractors(extractors, jpegQuality)
}

// NewPipelineWithExtractors собирает конвейер с произвольным набором экстракторов.
// Порядок экстракторов задаёт порядок детекций в результате.
func NewPipelineWithExtractors(extractors []Extractor, jpegQuality int) *Pipeline {
	return &Pipeline{
		extractors:  extractors,
		limits:      DefaultQualityLimits(),
		jpegQuality: jpegQuality,
	}
}

// Analyze запускает анализ закодированного кадра.
func (p *Pipeline) Analyze(ctx context.Context, payload []byte, cal entity.Calibration) (*entity.FrameAnalysis, error) {
	img, err := codec.DecodeFrame(payload)
	if err != nil {
		return nil, err
	}

	raster, err := toRaster(img)
	if err != nil {
		return nil, err
	}
	defer raster.Close()

	return p.AnalyzeRaster(ctx, raster, cal)
}

// AnalyzeRaster анализирует уже декодированный BGR-растр. Растр не изменяется.
func (p *Pipeline) AnalyzeRaster(ctx context.Context, raster gocv.Mat, cal entity.Calibration) (*entity.FrameAnalysis, error) {
	if err := validateRaster(raster); err != nil {
		return nil, err
	}
	// Неверные ядра и пороги роняют OpenCV, поэтому проверяем заранее.
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}

	detections := p.extract(ctx, raster, cal)
	risk := entity.AggregateRisk(detections)

	quality := assessQuality(raster, p.limits)
	if len(quality.Warnings) > 0 {
		log.Printf("Frame quality warnings: %v", quality.Warnings)
	}

	annotated := Annotate(raster, detections)
	defer annotated.Close()

	img, err := annotated.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert annotated frame: %w", err)
	}
	encoded, err := codec.EncodeJPEG(img, p.jpegQuality)
	if err != nil {
		return nil, err
	}

	return &entity.FrameAnalysis{
		Detections:     detections,
		RiskLevel:      risk,
		AnnotatedImage: encoded,
		Width:          raster.Cols(),
		Height:         raster.Rows(),
		Quality:        quality,
	}, nil
}

// extract запускает экстракторы параллельно. Каждый пишет в свой слот,
// поэтому итоговый порядок не зависит от того, кто закончил первым.
func (p *Pipeline) extract(ctx context.Context, raster gocv.Mat, cal entity.Calibration) []entity.Detection {
	results := make([][]entity.Detection, len(p.extractors))

	var g errgroup.Group
	for i, ex := range p.extractors {
		g.Go(func() error {
			found, err := runExtractor(ctx, ex, raster, cal)
			if err != nil {
				log.Printf("Extractor skipped: %v", err)
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	detections := make([]entity.Detection, 0)
	for _, found := range results {
		detections = append(detections, found...)
	}
	return detections
}

func runExtractor(ctx context.Context, ex Extractor, raster gocv.Mat, cal entity.Calibration) (found []entity.Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = &entity.ExtractionError{Extractor: ex.Kind(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	found, err = ex.Extract(ctx, raster, cal)
	if err != nil {
		return nil, &entity.ExtractionError{Extractor: ex.Kind(), Err: err}
	}
	return found, nil
}

var _ port.FrameAnalyzer = (*Pipeline)(nil)
