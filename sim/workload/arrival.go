package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates gaps between consecutive vehicle arrivals.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Always returns a positive value (>= 1).
	SampleIAT(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	rate float64 // vehicles per tick
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) int64 {
	return atLeastOne(rng.ExpFloat64() / s.rate)
}

// GammaSampler generates Gamma-distributed inter-arrival times.
// CV > 1 produces bursty arrivals such as a rush hour.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // CV²/rate in ticks
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) int64 {
	return atLeastOne(gammaRand(rng, s.shape, s.scale))
}

// ConstantSampler spaces arrivals evenly.
type ConstantSampler struct {
	gap int64
}

func (s *ConstantSampler) SampleIAT(_ *rand.Rand) int64 {
	if s.gap < 1 {
		return 1
	}
	return s.gap
}

func atLeastOne(sample float64) int64 {
	iat := int64(sample)
	if iat < 1 {
		return 1
	}
	return iat
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// NewArrivalSampler creates an ArrivalSampler from a validated spec.
func NewArrivalSampler(spec ArrivalSpec) ArrivalSampler {
	rate := spec.Rate
	if rate < 1e-15 {
		rate = 1e-15
	}
	switch spec.Process {
	case "gamma":
		cv := 1.0
		if spec.CV != nil && *spec.CV > 0 {
			cv = *spec.CV
		}
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{rate: rate}
		}
		return &GammaSampler{shape: shape, scale: cv * cv / rate}
	case "constant":
		return &ConstantSampler{gap: int64(math.Round(1.0 / rate))}
	default:
		return &PoissonSampler{rate: rate}
	}
}
