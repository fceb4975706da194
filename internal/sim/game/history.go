package game

import "github.com/konrad-jamrozik/game-ts-sub002/internal/sim/history"

// Undo and the other timeline commands are no-ops returning false at the
// boundaries.
func (e *Engine) Undo() bool {
	return e.timeline(Op{Op: OpUndo}, e.hist.Undo)
}

func (e *Engine) Redo() bool {
	return e.timeline(Op{Op: OpRedo}, e.hist.Redo)
}

func (e *Engine) JumpToPast(i int) bool {
	return e.timeline(Op{Op: OpJumpToPast, Index: i}, func() bool { return e.hist.JumpToPast(i) })
}

func (e *Engine) JumpToFuture(i int) bool {
	return e.timeline(Op{Op: OpJumpToFuture, Index: i}, func() bool { return e.hist.JumpToFuture(i) })
}

func (e *Engine) ClearHistory() bool {
	return e.timeline(Op{Op: OpClearHistory}, e.hist.Clear)
}

func (e *Engine) CompactHistory() bool {
	keep := e.rules.T.History.KeepTurns
	return e.timeline(Op{Op: OpCompactHistory}, func() bool { return e.hist.Compact(keep) })
}

// History is a read-only view of the timeline.
func (e *Engine) History() *history.History { return e.hist.Snapshot() }

func (e *Engine) timeline(op Op, move func() bool) bool {
	if e.closed || !move() {
		return false
	}
	e.restore(e.hist.Present)
	e.ops = append(e.ops, op)
	e.log.Debug("history moved", "op", op.Op, "turn", e.gs.Turn, "actions", e.gs.ActionsCount)
	e.persist()
	return true
}
