package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// StaySampler generates how many ticks a vehicle stays after arriving.
type StaySampler interface {
	// Sample returns a positive duration (>= 1).
	Sample(rng *rand.Rand) int64
}

// GaussianStaySampler produces clamped Gaussian stays.
type GaussianStaySampler struct {
	mean, stdDev float64
	min, max     int64
}

func (s *GaussianStaySampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return max(s.min, 1)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	return max(int64(math.Round(clamped)), 1)
}

// ExponentialStaySampler produces exponentially-distributed stays.
type ExponentialStaySampler struct {
	mean float64
}

func (s *ExponentialStaySampler) Sample(rng *rand.Rand) int64 {
	return max(int64(math.Round(rng.ExpFloat64()*s.mean)), 1)
}

// ConstantStaySampler always returns the same stay.
type ConstantStaySampler struct {
	value int64
}

func (s *ConstantStaySampler) Sample(_ *rand.Rand) int64 {
	return max(s.value, 1)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewStaySampler creates a StaySampler from a DistSpec.
func NewStaySampler(spec DistSpec) (StaySampler, error) {
	switch spec.Type {
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianStaySampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int64(spec.Params["min"]),
			max:    int64(spec.Params["max"]),
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialStaySampler{mean: spec.Params["mean"]}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantStaySampler{value: int64(spec.Params["value"])}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
