package rng

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

func TestStreamsAreDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Roll(AgentAttack), b.Roll(AgentAttack); x != y {
			t.Fatalf("draw %d: %s != %s", i, x, y)
		}
	}
}

func TestStreamsAreIndependent(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 10; i++ {
		a.Roll(EnemyAttack)
	}
	for i := 0; i < 10; i++ {
		if x, y := a.Roll(AgentAttack), b.Roll(AgentAttack); x != y {
			t.Fatalf("draw %d diverged after unrelated stream use", i)
		}
	}
}

func TestRollRange(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		v := s.Roll(LeadInvestigation)
		if v < 0 || v >= fixed6.One {
			t.Fatalf("roll out of range: %s", v)
		}
	}
}

func TestOverrides(t *testing.T) {
	s := New(3)
	s.Set(AgentAttack, 0)
	if v := s.Roll(AgentAttack); v != 0 {
		t.Fatalf("override ignored: %s", v)
	}
	if got := s.State().Counters[AgentAttack]; got != 0 {
		t.Fatalf("override consumed a draw: %d", got)
	}
	s.Reset(AgentAttack)
	if len(s.Overrides()) != 0 {
		t.Fatalf("overrides = %v", s.Overrides())
	}
}

func TestRestoreRewinds(t *testing.T) {
	s := New(9)
	s.Roll(OperationLevel)
	st := s.State()
	first := s.Roll(OperationLevel)
	s.Restore(st)
	if again := s.Roll(OperationLevel); again != first {
		t.Fatalf("restore did not rewind: %s vs %s", again, first)
	}
}

func TestIntRangeBounds(t *testing.T) {
	s := New(5)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := IntRange(s, AgentDamage, 8, 12)
		if v < 8 || v > 12 {
			t.Fatalf("out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Fatalf("not all values drawn: %v", seen)
	}
	s.Set(AgentDamage, fixed6.One)
	if v := IntRange(s, AgentDamage, 8, 12); v != 12 {
		t.Fatalf("forced max = %d", v)
	}
}

func TestWeighted(t *testing.T) {
	s := New(11)
	if got := Weighted(s, OperationLevel, []int{0, 0, 0}); got != -1 {
		t.Fatalf("zero weights = %d", got)
	}
	s.Set(OperationLevel, 0)
	if got := Weighted(s, OperationLevel, []int{0, 5, 5}); got != 1 {
		t.Fatalf("first nonzero = %d", got)
	}
	s.Set(OperationLevel, fixed6.One)
	if got := Weighted(s, OperationLevel, []int{3, 5, 0}); got != 1 {
		t.Fatalf("last nonzero = %d", got)
	}
	s.Set(OperationLevel, fixed6.MustParse("0.5"))
	if got := Weighted(s, OperationLevel, []int{1, 1}); got != 1 {
		t.Fatalf("midpoint = %d", got)
	}
}
