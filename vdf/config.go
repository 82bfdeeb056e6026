package vdf

import (
	"github.com/wesolowski-vdf/vdf/internal/vlog"
	"github.com/wesolowski-vdf/vdf/montgomery"
)

// EngineConfig holds the knobs spec.md leaves as implementation parameters
// (Miller-Rabin round count, Montgomery routing thresholds, reducer-cache
// capacity) plus a place to inject a logger, following the teacher's
// VDFParams/VDFv2Config + constructor-injected-dependency shape.
type EngineConfig struct {
	// MillerRabinRounds is the number of random witnesses drawn once a
	// primality check falls into the probabilistic regime.
	MillerRabinRounds int

	// MontgomeryPolicy controls when Evaluate/Prove/Verify route through
	// Montgomery arithmetic instead of plain big.Int arithmetic.
	MontgomeryPolicy montgomery.RoutingPolicy

	// ReducerCacheCapacity bounds the process-wide Montgomery reducer cache
	// (montgomery.GetReducer's insert-only cache).
	ReducerCacheCapacity int

	// Log receives Evaluate's Montgomery-routing diagnostic (at debug level).
	// A nil Log is silent.
	Log *vlog.Logger
}

// DefaultEngineConfig returns spec.md's default rounds (32), the package's
// default Montgomery routing policy and cache capacity, and a discard
// logger.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MillerRabinRounds:    32,
		MontgomeryPolicy:     montgomery.DefaultRoutingPolicy(),
		ReducerCacheCapacity: montgomery.DefaultCacheCapacity,
		Log:                  vlog.NewDiscard(),
	}
}

func (c EngineConfig) logger() *vlog.Logger {
	if c.Log == nil {
		return vlog.NewDiscard()
	}
	return c.Log.Module("vdf")
}

// applyMontgomery installs this config's Montgomery policy and cache
// capacity as the process-wide defaults the montgomery package reads.
// montgomery.GetReducer and ShouldUseForIterations/ShouldUseForExponent have
// no per-call override parameter, so an EngineConfig that wants different
// thresholds takes effect by updating the shared routing state the same way
// the rest of this package's Montgomery integration already shares a single
// process-wide reducer cache.
func (c EngineConfig) applyMontgomery() {
	policy := c.MontgomeryPolicy
	if policy == (montgomery.RoutingPolicy{}) {
		policy = montgomery.DefaultRoutingPolicy()
	}
	montgomery.SetDefaultPolicy(policy)

	capacity := c.ReducerCacheCapacity
	if capacity == 0 {
		capacity = montgomery.DefaultCacheCapacity
	}
	montgomery.SetCacheCapacity(capacity)
}

var defaultConfig = DefaultEngineConfig()
