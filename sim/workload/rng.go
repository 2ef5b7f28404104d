package workload

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible generation run.
// Two runs with the same SimulationKey, spec and structure MUST produce
// identical event files.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemArrivals draws inter-arrival gaps. Uses the master seed directly.
	SubsystemArrivals = "arrivals"
	// SubsystemStays draws parking durations.
	SubsystemStays = "stays"
	// SubsystemRoutes picks entries and exit types.
	SubsystemRoutes = "routes"
)

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// so adding draws to one subsystem does not shift the others.
//
// Derivation formula:
//   - For SubsystemArrivals: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := int64(p.key)
	if name != SubsystemArrivals {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
