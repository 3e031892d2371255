package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCalibration_Valid(t *testing.T) {
	cal := DefaultCalibration()
	require.NoError(t, cal.Validate())

	require.Equal(t, 50.0, cal.Crack.CannyLow)
	require.Equal(t, 150.0, cal.Crack.CannyHigh)
	require.Equal(t, 5, cal.LooseRock.BlurKernel)
	require.Equal(t, 3, cal.StructuralDamage.DilateKernel)
	require.Equal(t, 0.1, cal.GasLeak.Probability)
}

func TestCalibrationValidate_CollectsAllProblems(t *testing.T) {
	cal := DefaultCalibration()
	cal.Crack.CannyLow = 200
	cal.LooseRock.BlurKernel = 4
	cal.GasLeak.Probability = 1.5

	err := cal.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "crack: canny thresholds")
	require.Contains(t, err.Error(), "blur_kernel")
	require.Contains(t, err.Error(), "gas_leak: probability")
}

func TestCalibrationValidate_ConfidenceRange(t *testing.T) {
	cal := DefaultCalibration()
	cal.GasLeak.ConfidenceMin = 0.95
	cal.GasLeak.ConfidenceSpread = 0.1
	require.Error(t, cal.Validate())

	cal = DefaultCalibration()
	cal.StructuralDamage.ConfidenceCap = 0
	require.Error(t, cal.Validate())
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewDecodeError("not an image", cause)

	require.True(t, IsDecodeError(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "decode frame: not an image: unexpected EOF", err.Error())
	require.False(t, IsDecodeError(cause))
}

func TestCalibrationValidate_RejectsNonFinite(t *testing.T) {
	cal := DefaultCalibration()
	cal.Crack.ConfidenceCap = math.NaN()
	err := cal.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "crack: confidence_cap must be a finite number")

	cal = DefaultCalibration()
	cal.StructuralDamage.CannyLow = math.NaN()
	require.Error(t, cal.Validate())

	cal = DefaultCalibration()
	cal.LooseRock.ConfidenceScale = math.Inf(1)
	require.Error(t, cal.Validate())

	cal = DefaultCalibration()
	cal.GasLeak.Probability = math.NaN()
	require.Error(t, cal.Validate())

	cal = DefaultCalibration()
	cal.GasLeak.ConfidenceSpread = math.NaN()
	require.Error(t, cal.Validate())
}
