package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

const (
	OpCommand        = "cmd"
	OpUndo           = "undo"
	OpRedo           = "redo"
	OpJumpToPast     = "jump_past"
	OpJumpToFuture   = "jump_future"
	OpClearHistory   = "clear_history"
	OpCompactHistory = "compact_history"
	OpRandSet        = "rand_set"
	OpRandReset      = "rand_reset"
	OpRandResetAll   = "rand_reset_all"
)

// Op is one primitive engine input. AI turns are logged as the commands the
// AI issued, so a replay never needs the intellect.
type Op struct {
	Op     string          `json:"op"`
	Action string          `json:"action,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
	Index  int             `json:"index,omitempty"`
	Stream string          `json:"stream,omitempty"`
	Value  fixed6.F        `json:"value,omitempty"`
}

// TurnLogEntry groups the ops that led up to and included one AdvanceTurn.
// Digest is the state digest after the last op.
type TurnLogEntry struct {
	Seed   int64  `json:"seed"`
	Turn   int    `json:"turn"`
	Ops    []Op   `json:"ops"`
	Digest string `json:"digest"`
}

type TurnLogger interface {
	WriteTurn(entry TurnLogEntry) error
}

var ErrReplayDiverged = errors.New("replay diverged")

func (e *Engine) recordCommand(cmd actions.Command) {
	name, args, err := actions.Marshal(cmd)
	if err != nil {
		e.log.Error("turn log encode failed", "action", cmd.Kind().String(), "err", err)
		return
	}
	e.ops = append(e.ops, Op{Op: OpCommand, Action: name, Args: args})
}

func (e *Engine) flushTurnLog() error {
	if len(e.ops) == 0 {
		return nil
	}
	ops := e.ops
	e.ops = nil
	if e.cfg.TurnLog == nil {
		return nil
	}
	return e.cfg.TurnLog.WriteTurn(TurnLogEntry{
		Seed:   e.rand.Seed(),
		Turn:   e.gs.Turn,
		Ops:    ops,
		Digest: e.gs.Digest(),
	})
}

// Replay drives a fresh engine through entries and checks every digest.
// cfg.Seed is taken from the first entry; cfg.Resume is ignored.
func Replay(cfg Config, entries []TurnLogEntry) (*Engine, error) {
	if len(entries) > 0 {
		cfg.Seed = entries[0].Seed
	}
	cfg.Resume = nil
	cfg.TurnLog = nil
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		for i, op := range entry.Ops {
			if err := e.replayOp(op); err != nil {
				return e, fmt.Errorf("turn %d op %d (%s): %w", entry.Turn, i, op.Op, err)
			}
		}
		if got := e.gs.Digest(); got != entry.Digest {
			return e, fmt.Errorf("%w at turn %d: digest %s, want %s", ErrReplayDiverged, entry.Turn, got, entry.Digest)
		}
	}
	return e, nil
}

func (e *Engine) replayOp(op Op) error {
	moved := true
	switch op.Op {
	case OpCommand:
		cmd, err := actions.Unmarshal(op.Action, op.Args)
		if err != nil {
			return err
		}
		if res := e.apply(cmd); !res.OK {
			return fmt.Errorf("%w: %s rejected: %s", ErrReplayDiverged, op.Action, res.Code)
		}
	case OpUndo:
		moved = e.Undo()
	case OpRedo:
		moved = e.Redo()
	case OpJumpToPast:
		moved = e.JumpToPast(op.Index)
	case OpJumpToFuture:
		moved = e.JumpToFuture(op.Index)
	case OpClearHistory:
		moved = e.ClearHistory()
	case OpCompactHistory:
		moved = e.CompactHistory()
	case OpRandSet:
		e.Debug().SetRand(op.Stream, op.Value)
	case OpRandReset:
		e.Debug().ResetRand(op.Stream)
	case OpRandResetAll:
		e.Debug().ResetAllRand()
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	if !moved {
		return fmt.Errorf("%w: history op had no effect", ErrReplayDiverged)
	}
	return nil
}
