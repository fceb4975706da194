// Package game is the facade over the simulation. An Engine owns one game:
// its state, AI goals, RNG streams and undo timeline. It is not safe for
// concurrent use; transports serialise access.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/history"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

// Sink receives a snapshot after every state change. Implementations must
// not block; see store.Writer.
type Sink interface {
	Save(snap snapshot.Snapshot)
}

type Config struct {
	Seed int64
	// Tuning defaults to tuning.Defaults().
	Tuning *tuning.Tuning
	// Catalogs default to the embedded tables.
	Catalogs *catalogs.Catalogs
	Log      *slog.Logger

	// Optional (may be nil).
	Sink    Sink
	TurnLog TurnLogger
	// Resume continues a persisted game instead of starting a new one.
	Resume *snapshot.Snapshot
}

type Engine struct {
	cfg   Config
	rules *ruleset.Rules
	log   *slog.Logger
	rand  *rng.Streams

	gs   *model.GameState
	ai   model.AIState
	hist *history.History

	ops    []Op
	closed bool
}

var ErrClosed = errors.New("engine closed")

func New(cfg Config) (*Engine, error) {
	t := tuning.Defaults()
	if cfg.Tuning != nil {
		t = *cfg.Tuning
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	cats := cfg.Catalogs
	if cats == nil {
		var err error
		if cats, err = catalogs.Load(); err != nil {
			return nil, fmt.Errorf("catalogs: %w", err)
		}
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		cfg:   cfg,
		rules: ruleset.New(t, cats),
		log:   log,
		rand:  rng.New(cfg.Seed),
	}

	if snap := cfg.Resume; snap != nil {
		if snap.Header.Version != t.Persistence.Version {
			return nil, fmt.Errorf("%w: have %d, want %d", snapshot.ErrVersionMismatch, snap.Header.Version, t.Persistence.Version)
		}
		e.gs = snap.Game.Clone()
		e.ai = snap.AI.Clone()
		e.rand.Restore(snap.Rand)
		e.hist = snap.History
		if e.hist == nil {
			e.hist = history.New(e.capture("resume"), t.History.Limit)
		}
		e.log.Info("game resumed", "turn", e.gs.Turn, "digest", e.gs.Digest())
		return e, nil
	}

	e.gs, e.ai = e.rules.InitialState(e.rand)
	e.hist = history.New(e.capture("start"), t.History.Limit)
	e.log.Info("game started", "seed", cfg.Seed, "money", e.gs.Money, "agents", len(e.gs.Agents))
	e.persist()
	return e, nil
}

// Close writes out the unlogged tail of the turn log.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.flushTurnLog()
}

// GameState is the live state. Callers must treat it as read-only.
func (e *Engine) GameState() *model.GameState { return e.gs }

func (e *Engine) AIState() model.AIState { return e.ai }

func (e *Engine) Rules() *ruleset.Rules { return e.rules }

func (e *Engine) Seed() int64 { return e.rand.Seed() }

func (e *Engine) IsGameOver() bool { return ruleset.IsGameOver(e.gs) }

func (e *Engine) IsGameWon() bool { return e.rules.IsGameWon(e.gs) }

// Snapshot returns a deep copy suitable for persistence or export.
func (e *Engine) Snapshot() snapshot.Snapshot {
	return snapshot.New(e.rules.T.Persistence.Version, e.gs.Clone(), e.ai.Clone(), e.rand.State(), e.hist.Snapshot())
}

func (e *Engine) capture(label string) history.Checkpoint {
	return history.Capture(label, e.gs, e.ai, e.rand.State())
}

func (e *Engine) restore(cp history.Checkpoint) {
	gs, ai, st := cp.Restore()
	e.gs, e.ai = gs, ai
	e.rand.Restore(st)
}

func (e *Engine) persist() {
	if e.cfg.Sink == nil {
		return
	}
	e.cfg.Sink.Save(e.Snapshot())
}

func (e *Engine) env() actions.Env {
	return actions.Env{Rules: e.rules, Game: e.gs, AI: &e.ai, Rand: e.rand, Log: e.log}
}

// apply validates and runs cmd, then checkpoints, logs and persists.
func (e *Engine) apply(cmd actions.Command) actions.Result {
	if e.closed {
		return actions.Result{Code: protocol.ErrInternal, Message: ErrClosed.Error()}
	}
	res := actions.Apply(e.env(), cmd)
	if !res.OK {
		return res
	}
	e.recordCommand(cmd)
	label := cmd.Kind().String()
	if cmd.Kind().Checkpointed() {
		e.hist.Record(e.capture(label))
	} else {
		e.hist.Replace(e.capture(label))
	}
	if cmd.Kind() == actions.KindAdvanceTurn {
		if err := e.flushTurnLog(); err != nil {
			e.log.Error("turn log write failed", "turn", e.gs.Turn, "err", err)
		}
	}
	e.persist()
	return res
}
