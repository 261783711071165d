package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// Interval is a bootstrap percentile interval around a sample mean.
type Interval struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Mean       float64 `json:"mean"`
	Level      float64 `json:"level"`
	Resamples  int     `json:"resamples"`
	SampleSize int     `json:"sample_size"`
}

// DefaultResamples is the number of bootstrap resamples.
const DefaultResamples = 10000

type bootstrapConfig struct {
	seed      int64
	resamples int
}

// Option configures MeanCI.
type Option func(*bootstrapConfig)

// WithSeed makes resampling deterministic. A negative seed uses a
// non-deterministic source.
func WithSeed(seed int64) Option {
	return func(c *bootstrapConfig) {
		c.seed = seed
	}
}

// WithResamples overrides DefaultResamples.
func WithResamples(n int) Option {
	return func(c *bootstrapConfig) {
		if n > 0 {
			c.resamples = n
		}
	}
}

// MeanCI computes a bootstrap confidence interval for the mean of samples
// using the percentile method. level should be in (0, 1), e.g. 0.95.
// With fewer than 2 samples the interval collapses onto the mean.
func MeanCI(samples []float64, level float64, opts ...Option) Interval {
	cfg := bootstrapConfig{seed: -1, resamples: DefaultResamples}
	for _, o := range opts {
		o(&cfg)
	}

	n := len(samples)
	m := mean(samples)
	if n < 2 {
		return Interval{Lower: m, Upper: m, Mean: m, Level: level, SampleSize: n}
	}

	var rng *rand.Rand
	if cfg.seed >= 0 {
		rng = rand.New(rand.NewSource(cfg.seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	iters := cfg.resamples
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := range iters {
		for j := range n {
			sample[j] = samples[rng.Intn(n)]
		}
		bootMeans[i] = mean(sample)
	}
	sort.Float64s(bootMeans)

	alpha := 1.0 - level
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return Interval{
		Lower:      bootMeans[loIdx],
		Upper:      bootMeans[hiIdx],
		Mean:       m,
		Level:      level,
		Resamples:  iters,
		SampleSize: n,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
