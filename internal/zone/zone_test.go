package zone

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

func TestComputeRegions_CaseGrowth(t *testing.T) {
	got := ComputeRegions(0, 1.5, level.CaseGrowthRateLevels)

	want := []Region{
		{Name: "Low", Level: level.Low, Color: level.ColorGreen, ValueFrom: 0, ValueTo: 1.0},
		{Name: "Medium", Level: level.Medium, Color: level.ColorOrange, ValueFrom: 1.0, ValueTo: 1.2},
		{Name: "High", Level: level.High, Color: level.ColorRed, ValueFrom: 1.2, ValueTo: 1.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeRegions_MaxBelowMediumFloor(t *testing.T) {
	got := ComputeRegions(0, 0.8, level.CaseGrowthRateLevels)

	require.Len(t, got, 1)
	assert.Equal(t, level.Low, got[0].Level)
	assert.Equal(t, 0.0, got[0].ValueFrom)
	assert.Equal(t, 0.8, got[0].ValueTo)
}

func TestComputeRegions_MaxInsideMedium(t *testing.T) {
	got := ComputeRegions(0, 1.1, level.CaseGrowthRateLevels)

	require.Len(t, got, 2)
	assert.Equal(t, level.Medium, got[1].Level)
	assert.InDelta(t, 1.1, got[1].ValueTo, 1e-12)
}

func TestComputeRegions_MinAboveLowCeiling(t *testing.T) {
	got := ComputeRegions(1.1, 2, level.CaseGrowthRateLevels)

	require.Len(t, got, 2)
	assert.Equal(t, level.Medium, got[0].Level)
	assert.Equal(t, 1.1, got[0].ValueFrom, "band must not extend below the visible minimum")
	assert.Equal(t, 1.2, got[0].ValueTo)
	assert.Equal(t, level.High, got[1].Level)
}

func TestComputeRegions_NeverNegativeAndContiguous(t *testing.T) {
	ranges := [][2]float64{
		{0, 0.01}, {0, 0.03}, {0, 0.05}, {0, 0.1}, {0, 0.4}, {0.02, 0.2},
		{0.05, 0.07}, {0.2, 0.9}, {0, 1}, {1, 1}, {2, 1},
	}

	for _, def := range level.Definitions() {
		for _, r := range ranges {
			regions := ComputeRegions(r[0], r[1], def.Levels)

			sum := 0.0
			for i, region := range regions {
				assert.Less(t, region.ValueFrom, region.ValueTo, "%s %v region %d", def.ID, r, i)
				if i > 0 {
					assert.Equal(t, regions[i-1].ValueTo, region.ValueFrom, "%s %v bands must touch", def.ID, r)
					assert.Greater(t, region.Level, regions[i-1].Level)
				}
				sum += region.Span()
			}
			if r[1] > r[0] {
				assert.InDelta(t, r[1]-r[0], sum, 1e-9, "%s %v spans must cover the range", def.ID, r)
			} else {
				assert.Empty(t, regions)
			}
		}
	}
}

func TestComputeTickPositions(t *testing.T) {
	tests := []struct {
		name     string
		yMin     float64
		yMax     float64
		expected []float64
	}{
		{"both thresholds visible", 0, 1.5, []float64{1.0, 1.2}},
		{"max equals threshold is excluded", 0, 1.2, []float64{1.0}},
		{"min equals threshold is excluded", 1.0, 1.5, []float64{1.2}},
		{"range below thresholds", 0, 0.5, []float64{}},
		{"range above thresholds", 1.3, 3, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTickPositions(tt.yMin, tt.yMax, level.CaseGrowthRateLevels)
			assert.Equal(t, tt.expected, got)
			for _, tick := range got {
				assert.Greater(t, tick, tt.yMin)
				assert.Less(t, tick, tt.yMax)
			}
		})
	}
}

func TestActive(t *testing.T) {
	regions := ComputeRegions(0, 1.5, level.CaseGrowthRateLevels)

	r, ok := Active(regions, level.Classify(1.1, level.CaseGrowthRateLevels))
	require.True(t, ok)
	assert.Equal(t, "Medium", r.Name)

	_, ok = Active(regions, level.ClassifyOptional(nil, level.CaseGrowthRateLevels))
	assert.False(t, ok)
}

func TestRegion_Mid(t *testing.T) {
	r := Region{ValueFrom: 1.0, ValueTo: 1.2}
	assert.InDelta(t, 1.1, r.Mid(), 1e-12)
	assert.InDelta(t, 0.2, r.Span(), 1e-12)
}
