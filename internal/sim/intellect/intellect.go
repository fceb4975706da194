// Package intellect holds the computer players. An intellect reads the game
// through Player and changes it only through validated commands, so it keeps
// no memory between turns: goals live in model.AIState.
package intellect

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

// Player is the slice of the engine an intellect drives. Act is strict: a
// rejected command is a defect and panics.
type Player interface {
	Game() *model.GameState
	AI() model.AIState
	Rules() *ruleset.Rules
	Rand() rng.Source
	Act(cmd actions.Command)
}

type Intellect interface {
	Name() string
	// PlayTurn issues every command for the current turn except AdvanceTurn.
	PlayTurn(p Player)
}

type factory func(r *ruleset.Rules, log *slog.Logger) (Intellect, error)

var registry = map[string]factory{
	"basic": func(r *ruleset.Rules, log *slog.Logger) (Intellect, error) { return NewBasic(r, log) },
}

// New builds the intellect registered under name.
func New(name string, r *ruleset.Rules, log *slog.Logger) (Intellect, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown intellect %q", name)
	}
	if log == nil {
		log = slog.Default()
	}
	return f(r, log)
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
