package level

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_CaseGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected Level
	}{
		{"well below low limit", 0.9, Low},
		{"zero", 0, Low},
		{"negative", -3, Low},
		{"low limit is inclusive", 1.0, Low},
		{"just above low limit", 1.05, Medium},
		{"medium limit is inclusive", 1.2, Medium},
		{"just above medium limit", 1.21, High},
		{"large", 40, High},
		{"positive infinity", math.Inf(1), High},
		{"negative infinity", math.Inf(-1), Low},
		{"NaN", math.NaN(), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.value, CaseGrowthRateLevels)
			assert.Equal(t, tt.expected, got.Level)
			assert.Equal(t, CaseGrowthRateLevels.Get(tt.expected), got)
		})
	}
}

func TestClassify_BoundaryBelongsToLowerLevel(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(string(def.ID), func(t *testing.T) {
			low := def.Levels.Get(Low)
			medium := def.Levels.Get(Medium)

			assert.Equal(t, Low, Classify(low.UpperLimit, def.Levels).Level)
			assert.Equal(t, Medium, Classify(math.Nextafter(low.UpperLimit, math.Inf(1)), def.Levels).Level)
			assert.Equal(t, Medium, Classify(medium.UpperLimit, def.Levels).Level)
			assert.Equal(t, High, Classify(math.Nextafter(medium.UpperLimit, math.Inf(1)), def.Levels).Level)
		})
	}
}

func TestClassify_MonotoneWithinLow(t *testing.T) {
	limit := CaseGrowthRateLevels.Get(Low).UpperLimit
	for v := -1.0; v <= limit; v += 0.05 {
		assert.Equal(t, Low, Classify(v, CaseGrowthRateLevels).Level, "value %g", v)
	}
}

func TestClassifyOptional(t *testing.T) {
	v := 1.1
	assert.Equal(t, Medium, ClassifyOptional(&v, CaseGrowthRateLevels).Level)
	assert.Equal(t, Unknown, ClassifyOptional(nil, CaseGrowthRateLevels).Level)
	assert.Equal(t, "Insufficient data to assess", ClassifyOptional(nil, CaseGrowthRateLevels).Detail)
}

func TestNewLevelInfoMap_Validation(t *testing.T) {
	low := LevelInfo{Level: Low, UpperLimit: 1}
	medium := LevelInfo{Level: Medium, UpperLimit: 2}
	high := LevelInfo{Level: High, UpperLimit: math.Inf(1)}
	unknown := LevelInfo{Level: Unknown}

	t.Run("valid", func(t *testing.T) {
		m, err := NewLevelInfoMap(low, medium, high, unknown)
		require.NoError(t, err)
		assert.Equal(t, medium, m.Get(Medium))
	})

	t.Run("limits not increasing", func(t *testing.T) {
		_, err := NewLevelInfoMap(low, LevelInfo{Level: Medium, UpperLimit: 1}, high, unknown)
		require.ErrorIs(t, err, ErrNotIncreasing)
	})

	t.Run("NaN limit", func(t *testing.T) {
		_, err := NewLevelInfoMap(LevelInfo{Level: Low, UpperLimit: math.NaN()}, medium, high, unknown)
		require.ErrorIs(t, err, ErrNotIncreasing)
	})

	t.Run("bounded high", func(t *testing.T) {
		_, err := NewLevelInfoMap(low, medium, LevelInfo{Level: High, UpperLimit: 3}, unknown)
		require.ErrorIs(t, err, ErrBoundedHighest)
	})

	t.Run("slot mismatch", func(t *testing.T) {
		_, err := NewLevelInfoMap(medium, low, high, unknown)
		require.ErrorIs(t, err, ErrLevelMismatch)
	})

	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLevelInfoMap(low, medium, LevelInfo{Level: High, UpperLimit: 3}, unknown)
		})
	})
}

func TestLevelInfoMap_Ordered(t *testing.T) {
	got := TestPositivityLevels.Ordered()
	require.Len(t, got, 3)
	assert.Equal(t, []Level{Low, Medium, High}, []Level{got[0].Level, got[1].Level, got[2].Level})
	assert.Equal(t, 0.03, got[0].UpperLimit)
	assert.Equal(t, 0.1, got[1].UpperLimit)
	assert.True(t, math.IsInf(got[2].UpperLimit, 1))
}

func TestLevelInfo_JSON(t *testing.T) {
	data, err := json.Marshal(CaseGrowthRateLevels.Get(High))
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"high","upper_limit":null,"name":"High","color":"#ff0034","detail":"Active cases are increasing"}`, string(data))

	var decoded LevelInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, math.IsInf(decoded.UpperLimit, 1))
	assert.Equal(t, High, decoded.Level)

	data, err = json.Marshal(CaseGrowthRateLevels.Get(Medium))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"upper_limit":1.2`)
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{Low, Medium, High, Unknown} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	_, err := ParseLevel("critical")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	def, err := Lookup(CaseGrowthRate)
	require.NoError(t, err)
	assert.Equal(t, "Infection rate", def.Name)
	assert.Equal(t, 1.0, def.Levels.Get(Low).UpperLimit)
	assert.Equal(t, 1.2, def.Levels.Get(Medium).UpperLimit)

	_, err = Lookup("hospital_beds")
	require.ErrorIs(t, err, ErrUnknownMetric)
}
