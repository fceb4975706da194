package gametest

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
)

type countSink struct{ n int }

func (c *countSink) Save(snapshot.Snapshot) { c.n++ }

func TestNewAppliesOptions(t *testing.T) {
	sink := &countSink{}
	e := New(t, 1, WithSink(sink))
	Force(e, rng.LeadInvestigation, 0, rng.EnemyAttack, 1.0)
	if res := e.PlayerActions(false).AdvanceTurn(); !res.Success {
		t.Fatalf("advance: %+v", res)
	}
	if sink.n != 2 {
		t.Fatalf("saves = %d, want 2", sink.n)
	}
}
