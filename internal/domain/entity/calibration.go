package entity

import (
	"errors"
	"fmt"
	"math"
)

// CrackCalibration параметры поиска трещин.
type CrackCalibration struct {
	CannyLow        float64 `yaml:"canny_low" json:"canny_low"`
	CannyHigh       float64 `yaml:"canny_high" json:"canny_high"`
	MinArea         float64 `yaml:"min_area" json:"min_area"`                 // площадь контура должна быть строго больше
	WideAspect      float64 `yaml:"wide_aspect" json:"wide_aspect"`           // трещина, если w/h больше
	NarrowAspect    float64 `yaml:"narrow_aspect" json:"narrow_aspect"`       // трещина, если w/h меньше
	ConfidenceScale float64 `yaml:"confidence_scale" json:"confidence_scale"` // confidence = area / scale
	ConfidenceCap   float64 `yaml:"confidence_cap" json:"confidence_cap"`
}

// LooseRockCalibration параметры поиска осыпающихся камней.
type LooseRockCalibration struct {
	BlurKernel      int     `yaml:"blur_kernel" json:"blur_kernel"`
	MinArea         float64 `yaml:"min_area" json:"min_area"` // границы строгие
	MaxArea         float64 `yaml:"max_area" json:"max_area"`
	ConfidenceScale float64 `yaml:"confidence_scale" json:"confidence_scale"`
	ConfidenceCap   float64 `yaml:"confidence_cap" json:"confidence_cap"`
}

// StructuralDamageCalibration параметры поиска структурных повреждений.
type StructuralDamageCalibration struct {
	CannyLow         float64 `yaml:"canny_low" json:"canny_low"`
	CannyHigh        float64 `yaml:"canny_high" json:"canny_high"`
	DilateKernel     int     `yaml:"dilate_kernel" json:"dilate_kernel"`
	DilateIterations int     `yaml:"dilate_iterations" json:"dilate_iterations"`
	MinArea          float64 `yaml:"min_area" json:"min_area"`
	ConfidenceScale  float64 `yaml:"confidence_scale" json:"confidence_scale"`
	ConfidenceCap    float64 `yaml:"confidence_cap" json:"confidence_cap"`
}

// GasLeakCalibration параметры симулятора утечки газа.
type GasLeakCalibration struct {
	Probability      float64 `yaml:"probability" json:"probability"`
	BoxSize          int     `yaml:"box_size" json:"box_size"`
	ConfidenceMin    float64 `yaml:"confidence_min" json:"confidence_min"`
	ConfidenceSpread float64 `yaml:"confidence_spread" json:"confidence_spread"` // confidence в [min, min+spread)
}

// Calibration все настраиваемые константы конвейера.
type Calibration struct {
	Crack            CrackCalibration            `yaml:"crack" json:"crack"`
	LooseRock        LooseRockCalibration        `yaml:"loose_rock" json:"loose_rock"`
	StructuralDamage StructuralDamageCalibration `yaml:"structural_damage" json:"structural_damage"`
	GasLeak          GasLeakCalibration          `yaml:"gas_leak" json:"gas_leak"`
}

// DefaultCalibration возвращает заводские значения.
func DefaultCalibration() Calibration {
	return Calibration{
		Crack: CrackCalibration{
			CannyLow:        50,
			CannyHigh:       150,
			MinArea:         100,
			WideAspect:      3,
			NarrowAspect:    0.3,
			ConfidenceScale: 1000,
			ConfidenceCap:   0.9,
		},
		LooseRock: LooseRockCalibration{
			BlurKernel:      5,
			MinArea:         200,
			MaxArea:         2000,
			ConfidenceScale: 1500,
			ConfidenceCap:   0.8,
		},
		StructuralDamage: StructuralDamageCalibration{
			CannyLow:         30,
			CannyHigh:        100,
			DilateKernel:     3,
			DilateIterations: 1,
			MinArea:          500,
			ConfidenceScale:  2000,
			ConfidenceCap:    0.9,
		},
		GasLeak: GasLeakCalibration{
			Probability:      0.1,
			BoxSize:          100,
			ConfidenceMin:    0.85,
			ConfidenceSpread: 0.1,
		},
	}
}

// Validate проверяет согласованность параметров.
func (c Calibration) Validate() error {
	var errs []error

	// С NaN любое сравнение ложно, поэтому конечность проверяем отдельно.
	for name, v := range c.floats() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a finite number (got %v)", name, v))
		}
	}

	if err := validateCanny("crack", c.Crack.CannyLow, c.Crack.CannyHigh); err != nil {
		errs = append(errs, err)
	}
	if c.Crack.MinArea < 0 {
		errs = append(errs, errors.New("crack: min_area must not be negative"))
	}
	if c.Crack.NarrowAspect < 0 || c.Crack.NarrowAspect >= c.Crack.WideAspect {
		errs = append(errs, errors.New("crack: narrow_aspect must be in [0, wide_aspect)"))
	}
	if err := validateConfidence("crack", c.Crack.ConfidenceScale, c.Crack.ConfidenceCap); err != nil {
		errs = append(errs, err)
	}

	if err := validateKernel("loose_rock: blur_kernel", c.LooseRock.BlurKernel); err != nil {
		errs = append(errs, err)
	}
	if c.LooseRock.MinArea < 0 || c.LooseRock.MinArea >= c.LooseRock.MaxArea {
		errs = append(errs, errors.New("loose_rock: min_area must be in [0, max_area)"))
	}
	if err := validateConfidence("loose_rock", c.LooseRock.ConfidenceScale, c.LooseRock.ConfidenceCap); err != nil {
		errs = append(errs, err)
	}

	if err := validateCanny("structural_damage", c.StructuralDamage.CannyLow, c.StructuralDamage.CannyHigh); err != nil {
		errs = append(errs, err)
	}
	if err := validateKernel("structural_damage: dilate_kernel", c.StructuralDamage.DilateKernel); err != nil {
		errs = append(errs, err)
	}
	if c.StructuralDamage.DilateIterations < 0 {
		errs = append(errs, errors.New("structural_damage: dilate_iterations must not be negative"))
	}
	if c.StructuralDamage.MinArea < 0 {
		errs = append(errs, errors.New("structural_damage: min_area must not be negative"))
	}
	if err := validateConfidence("structural_damage", c.StructuralDamage.ConfidenceScale, c.StructuralDamage.ConfidenceCap); err != nil {
		errs = append(errs, err)
	}

	g := c.GasLeak
	if g.Probability < 0 || g.Probability > 1 {
		errs = append(errs, errors.New("gas_leak: probability must be in [0, 1]"))
	}
	if g.BoxSize <= 0 {
		errs = append(errs, errors.New("gas_leak: box_size must be positive"))
	}
	if g.ConfidenceMin < 0 || g.ConfidenceSpread < 0 || g.ConfidenceMin+g.ConfidenceSpread > 1 {
		errs = append(errs, errors.New("gas_leak: confidence range must fit in [0, 1]"))
	}

	return errors.Join(errs...)
}

func (c Calibration) floats() map[string]float64 {
	return map[string]float64{
		"crack: canny_low":                    c.Crack.CannyLow,
		"crack: canny_high":                   c.Crack.CannyHigh,
		"crack: min_area":                     c.Crack.MinArea,
		"crack: wide_aspect":                  c.Crack.WideAspect,
		"crack: narrow_aspect":                c.Crack.NarrowAspect,
		"crack: confidence_scale":             c.Crack.ConfidenceScale,
		"crack: confidence_cap":               c.Crack.ConfidenceCap,
		"loose_rock: min_area":                c.LooseRock.MinArea,
		"loose_rock: max_area":                c.LooseRock.MaxArea,
		"loose_rock: confidence_scale":        c.LooseRock.ConfidenceScale,
		"loose_rock: confidence_cap":          c.LooseRock.ConfidenceCap,
		"structural_damage: canny_low":        c.StructuralDamage.CannyLow,
		"structural_damage: canny_high":       c.StructuralDamage.CannyHigh,
		"structural_damage: min_area":         c.StructuralDamage.MinArea,
		"structural_damage: confidence_scale": c.StructuralDamage.ConfidenceScale,
		"structural_damage: confidence_cap":   c.StructuralDamage.ConfidenceCap,
		"gas_leak: probability":               c.GasLeak.Probability,
		"gas_leak: confidence_min":            c.GasLeak.ConfidenceMin,
		"gas_leak: confidence_spread":         c.GasLeak.ConfidenceSpread,
	}
}

func validateCanny(name string, low, high float64) error {
	if low < 0 || high > 255 || low >= high {
		return fmt.Errorf("%s: canny thresholds must satisfy 0 <= low < high <= 255 (got %v, %v)", name, low, high)
	}
	return nil
}

func validateKernel(name string, size int) error {
	if size <= 0 || size%2 == 0 {
		return fmt.Errorf("%s must be a positive odd number (got %d)", name, size)
	}
	return nil
}

func validateConfidence(name string, scale, limit float64) error {
	if scale <= 0 {
		return fmt.Errorf("%s: confidence_scale must be positive", name)
	}
	if limit <= 0 || limit > 1 {
		return fmt.Errorf("%s: confidence_cap must be in (0, 1]", name)
	}
	return nil
}
