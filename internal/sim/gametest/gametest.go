// Package gametest builds engines for tests outside the game package.
package gametest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
)

// QuietLogger discards everything.
func QuietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type Option func(*game.Config)

func WithSink(s game.Sink) Option { return func(c *game.Config) { c.Sink = s } }

func WithTurnLog(l game.TurnLogger) Option { return func(c *game.Config) { c.TurnLog = l } }

// New returns an engine seeded with seed and closes it at test cleanup.
func New(t testing.TB, seed int64, opts ...Option) *game.Engine {
	t.Helper()
	cfg := game.Config{Seed: seed, Log: QuietLogger()}
	for _, o := range opts {
		o(&cfg)
	}
	e, err := game.New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// Force pins streams to fixed values, e.g. Force(e, "agent_attack", 0).
func Force(e *game.Engine, pairs ...any) {
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Debug().SetRand(pairs[i].(string), toF(pairs[i+1]))
	}
}

func toF(v any) fixed6.F {
	switch x := v.(type) {
	case fixed6.F:
		return x
	case int:
		return fixed6.FromInt(x)
	case float64:
		return fixed6.FromFloat(x)
	}
	panic("gametest: unsupported value type")
}
