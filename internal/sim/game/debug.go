package game

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

// Debug exposes RNG overrides and debug commands. It is meant for tests and
// debug tooling only.
type Debug struct{ e *Engine }

func (e *Engine) Debug() *Debug { return &Debug{e: e} }

// SetRand forces every draw of stream to v until reset.
func (d *Debug) SetRand(stream string, v fixed6.F) {
	d.e.rand.Set(stream, v)
	d.e.ops = append(d.e.ops, Op{Op: OpRandSet, Stream: stream, Value: v})
}

func (d *Debug) ResetRand(stream string) {
	d.e.rand.Reset(stream)
	d.e.ops = append(d.e.ops, Op{Op: OpRandReset, Stream: stream})
}

func (d *Debug) ResetAllRand() {
	d.e.rand.ResetAll()
	d.e.ops = append(d.e.ops, Op{Op: OpRandResetAll})
}

func (d *Debug) SetActivityLevel(factionID string, level int) ActionResult {
	return fromResult(d.e.apply(actions.DebugSetActivityLevel{FactionID: factionID, Level: level}))
}

func (d *Debug) GrantMoney(amount int) ActionResult {
	return fromResult(d.e.apply(actions.DebugGrantMoney{Amount: amount}))
}
