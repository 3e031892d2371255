package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBBoxValid(t *testing.T) {
	b := BBox{X1: 10, Y1: 20, X2: 18, Y2: 26}
	require.Equal(t, 8, b.Width())
	require.Equal(t, 6, b.Height())
	require.True(t, b.Valid())
	require.False(t, BBox{X1: 5, Y1: 5, X2: 5, Y2: 9}.Valid())
}

func TestDetectionJSONShape(t *testing.T) {
	d := NewDetection(HazardCrack, 0.4, BBox{X1: 10, Y1: 10, X2: 61, Y2: 19})

	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"crack","confidence":0.4,"bbox":[10,10,61,19],"severity":"high"}`, string(data))

	var back Detection
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, d, back)
}

func TestBBoxUnmarshalRejectsWrongLength(t *testing.T) {
	var b BBox
	require.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &b))
}

func TestNewDetection_SeverityFromCategory(t *testing.T) {
	require.Equal(t, SeverityHigh, NewDetection(HazardCrack, 0.5, BBox{}).Severity)
	require.Equal(t, SeverityMedium, NewDetection(HazardLooseRock, 0.5, BBox{}).Severity)
	require.Equal(t, SeverityHigh, NewDetection(HazardStructuralDamage, 0.5, BBox{}).Severity)
	require.Equal(t, SeverityCritical, NewDetection(HazardGasLeak, 0.5, BBox{}).Severity)
}

func TestCategoryOf_Fallback(t *testing.T) {
	known := []HazardType{
		HazardCrack, HazardLooseRock, HazardGasLeak,
		HazardStructuralDamage, HazardSlopeInstability, HazardWaterAccumulation,
	}
	for _, ht := range known {
		require.NotEqual(t, FallbackCategory, CategoryOf(ht), ht)
	}

	unknown := HazardType("rockburst")
	require.Equal(t, FallbackCategory, CategoryOf(unknown))
	require.Equal(t, SeverityLow, NewDetection(unknown, 0.9, BBox{}).Severity)
}
