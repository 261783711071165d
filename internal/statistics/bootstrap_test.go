package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanCI_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []float64{2.5}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := MeanCI(tt.samples, 0.95)
			assert.Equal(t, tt.want, ci.Mean)
			assert.Equal(t, tt.want, ci.Lower)
			assert.Equal(t, tt.want, ci.Upper)
			assert.Zero(t, ci.Resamples)
			assert.Equal(t, len(tt.samples), ci.SampleSize)
		})
	}
}

func TestMeanCI_IdenticalValues(t *testing.T) {
	ci := MeanCI([]float64{1.5, 1.5, 1.5, 1.5}, 0.95, WithSeed(42))
	assert.InDelta(t, 1.5, ci.Lower, 1e-9)
	assert.InDelta(t, 1.5, ci.Upper, 1e-9)
}

func TestMeanCI_BracketsMean(t *testing.T) {
	durations := []float64{1.2, 1.9, 2.4, 3.1, 2.2, 1.7, 2.8, 2.0, 1.5, 2.6}
	ci := MeanCI(durations, 0.95, WithSeed(7))

	assert.InDelta(t, 2.14, ci.Mean, 1e-9)
	assert.Less(t, ci.Lower, ci.Mean)
	assert.Greater(t, ci.Upper, ci.Mean)
	assert.GreaterOrEqual(t, ci.Lower, 1.2)
	assert.LessOrEqual(t, ci.Upper, 3.1)
	assert.Equal(t, DefaultResamples, ci.Resamples)
	assert.Equal(t, 0.95, ci.Level)
}

func TestMeanCI_SeedIsReproducible(t *testing.T) {
	samples := []float64{0.4, 1.1, 0.9, 2.3, 1.7}
	a := MeanCI(samples, 0.9, WithSeed(3), WithResamples(500))
	b := MeanCI(samples, 0.9, WithSeed(3), WithResamples(500))
	assert.Equal(t, a, b)
	assert.Equal(t, 500, a.Resamples)
}

func TestMeanCI_NarrowerAtLowerLevel(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	wide := MeanCI(samples, 0.99, WithSeed(1))
	narrow := MeanCI(samples, 0.80, WithSeed(1))
	assert.Less(t, narrow.Upper-narrow.Lower, wide.Upper-wide.Lower)
}
