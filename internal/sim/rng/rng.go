// Package rng provides the single randomness seam of the simulation: named,
// independent, deterministic streams with per-stream overrides.
package rng

import (
	"sort"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

// Stream names used by the simulation.
const (
	AgentAttack         = "agent_attack"
	AgentDamage         = "agent_damage"
	EnemyAttack         = "enemy_attack"
	EnemyDamage         = "enemy_damage"
	LeadInvestigation   = "lead_investigation"
	ActivityProgression = "activity_progression"
	OperationFrequency  = "operation_frequency"
	OperationLevel      = "operation_level"
	AIDesiredPick       = "ai_desired_pick"
)

// Source yields values in [0, 1) per named stream. Overrides may return any
// value, including 1 (forces every "roll < p" check to fail).
type Source interface {
	Roll(stream string) fixed6.F
}

// State is the serializable position of every stream.
type State struct {
	Seed     int64            `json:"seed"`
	Counters map[string]int64 `json:"counters,omitempty"`
}

// Streams is the default Source. Each draw is a pure function of
// (seed, stream name, draw index), so streams never perturb one another.
type Streams struct {
	seed      int64
	counters  map[string]int64
	overrides map[string]fixed6.F
}

func New(seed int64) *Streams {
	return &Streams{
		seed:      seed,
		counters:  map[string]int64{},
		overrides: map[string]fixed6.F{},
	}
}

func (s *Streams) Seed() int64 { return s.seed }

func (s *Streams) Roll(stream string) fixed6.F {
	if v, ok := s.overrides[stream]; ok {
		return v
	}
	n := s.counters[stream]
	s.counters[stream] = n + 1
	h := hash3(s.seed, hashName(stream), n)
	return fixed6.F(h % fixed6.Scale)
}

// Set forces every draw of stream to return v until Reset.
func (s *Streams) Set(stream string, v fixed6.F) { s.overrides[stream] = v }

func (s *Streams) Reset(stream string) { delete(s.overrides, stream) }

func (s *Streams) ResetAll() { s.overrides = map[string]fixed6.F{} }

// Overrides lists the currently forced streams in name order.
func (s *Streams) Overrides() []string {
	out := make([]string, 0, len(s.overrides))
	for k := range s.overrides {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Streams) State() State {
	c := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		c[k] = v
	}
	return State{Seed: s.seed, Counters: c}
}

// Restore rewinds stream positions. Overrides are left untouched.
func (s *Streams) Restore(st State) {
	s.seed = st.Seed
	s.counters = make(map[string]int64, len(st.Counters))
	for k, v := range st.Counters {
		s.counters[k] = v
	}
}

// IntRange returns an integer uniformly drawn from [lo, hi].
func IntRange(src Source, stream string, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	v := lo + src.Roll(stream).MulInt(span).Int()
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// Weighted returns the index picked with probability proportional to its
// weight, or -1 when all weights are zero.
func Weighted(src Source, stream string, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	r := src.Roll(stream).MulInt(total).Int()
	if r >= total {
		r = total - 1
	}
	if r < 0 {
		r = 0
	}
	acc := 0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		acc += w
		if r < acc {
			return i
		}
	}
	return last
}

func hashName(id string) uint64 {
	// FNV-1a 64-bit.
	var h uint64 = 1469598103934665603
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 1099511628211
	}
	return h
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash3(seed int64, name uint64, n int64) uint64 {
	v := uint64(seed) ^ (name * 0x9e3779b97f4a7c15) ^ (uint64(n) * 0xc2b2ae3d27d4eb4f)
	return mix64(mix64(v))
}
