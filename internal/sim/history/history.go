// Package history keeps the undo timeline: past checkpoints, the present one,
// and the future left behind by undo. Checkpoints own deep clones, so the
// engine may keep mutating its live state after recording.
package history

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
)

type Checkpoint struct {
	Turn         int              `json:"turn"`
	ActionsCount int              `json:"actions_count"`
	Label        string           `json:"label"`
	Game         *model.GameState `json:"game"`
	AI           model.AIState    `json:"ai"`
	Rand         rng.State        `json:"rand"`
}

// Capture clones the live state into a checkpoint.
func Capture(label string, gs *model.GameState, ai model.AIState, st rng.State) Checkpoint {
	return Checkpoint{
		Turn:         gs.Turn,
		ActionsCount: gs.ActionsCount,
		Label:        label,
		Game:         gs.Clone(),
		AI:           ai.Clone(),
		Rand:         st,
	}
}

// Restore returns a fresh copy of the checkpointed state for the engine to
// own.
func (c Checkpoint) Restore() (*model.GameState, model.AIState, rng.State) {
	return c.Game.Clone(), c.AI.Clone(), c.Rand
}

type History struct {
	Past    []Checkpoint `json:"past"`
	Present Checkpoint   `json:"present"`
	Future  []Checkpoint `json:"future"`
	Limit   int          `json:"limit"`
}

// New starts a timeline at present. A limit <= 0 means unbounded.
func New(present Checkpoint, limit int) *History {
	return &History{Present: present, Limit: limit}
}

func (h *History) CanUndo() bool { return len(h.Past) > 0 }
func (h *History) CanRedo() bool { return len(h.Future) > 0 }

// Record makes cp the present, pushes the old present into the past and
// drops the future.
func (h *History) Record(cp Checkpoint) {
	h.Past = append(h.Past, h.Present)
	h.Present = cp
	h.Future = nil
	if h.Limit > 0 && len(h.Past) > h.Limit {
		h.Past = append([]Checkpoint(nil), h.Past[len(h.Past)-h.Limit:]...)
	}
}

// Replace swaps the present without touching past or future.
func (h *History) Replace(cp Checkpoint) { h.Present = cp }

func (h *History) Undo() bool { return h.JumpToPast(len(h.Past) - 1) }

func (h *History) Redo() bool { return h.JumpToFuture(0) }

// JumpToPast makes Past[i] the present. Everything after it moves to the
// future in order.
func (h *History) JumpToPast(i int) bool {
	if i < 0 || i >= len(h.Past) {
		return false
	}
	future := make([]Checkpoint, 0, len(h.Past)-i+len(h.Future))
	future = append(future, h.Past[i+1:]...)
	future = append(future, h.Present)
	future = append(future, h.Future...)
	h.Present = h.Past[i]
	h.Past = h.Past[:i:i]
	h.Future = future
	return true
}

// JumpToFuture makes Future[i] the present. Everything before it moves to
// the past in order.
func (h *History) JumpToFuture(i int) bool {
	if i < 0 || i >= len(h.Future) {
		return false
	}
	past := make([]Checkpoint, 0, len(h.Past)+1+i)
	past = append(past, h.Past...)
	past = append(past, h.Present)
	past = append(past, h.Future[:i]...)
	h.Present = h.Future[i]
	h.Future = append([]Checkpoint(nil), h.Future[i+1:]...)
	h.Past = past
	return true
}

// Clear forgets past and future. It reports whether anything was dropped.
func (h *History) Clear() bool {
	if len(h.Past) == 0 && len(h.Future) == 0 {
		return false
	}
	h.Past, h.Future = nil, nil
	return true
}

// Compact keeps, for every turn older than the newest keepTurns turns, only
// the past checkpoint with the highest ActionsCount. It reports whether
// anything was removed; a second call is a no-op.
func (h *History) Compact(keepTurns int) bool {
	if keepTurns < 1 {
		keepTurns = 1
	}
	cutoff := h.Present.Turn - keepTurns + 1
	best := map[int]int{}
	for i, cp := range h.Past {
		if cp.Turn >= cutoff {
			continue
		}
		j, ok := best[cp.Turn]
		if !ok || cp.ActionsCount >= h.Past[j].ActionsCount {
			best[cp.Turn] = i
		}
	}
	kept := make([]Checkpoint, 0, len(h.Past))
	for i, cp := range h.Past {
		if cp.Turn >= cutoff || best[cp.Turn] == i {
			kept = append(kept, cp)
		}
	}
	if len(kept) == len(h.Past) {
		return false
	}
	h.Past = kept
	return true
}

// Snapshot returns a copy that stays valid while h keeps changing. Stored
// checkpoints are never modified in place, so sharing them is safe.
func (h *History) Snapshot() *History {
	c := *h
	return &c
}

// Labels lists the past, present and future labels, for display.
func (h *History) Labels() (past []string, present string, future []string) {
	for _, cp := range h.Past {
		past = append(past, cp.Label)
	}
	for _, cp := range h.Future {
		future = append(future, cp.Label)
	}
	return past, h.Present.Label, future
}
