package game

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/intellect"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

// aiPlayer adapts the engine to intellect.Player with strict actions.
type aiPlayer struct {
	e       *Engine
	actions *PlayerActions
}

func (p aiPlayer) Game() *model.GameState { return p.e.gs }
func (p aiPlayer) AI() model.AIState      { return p.e.ai }
func (p aiPlayer) Rules() *ruleset.Rules  { return p.e.rules }
func (p aiPlayer) Rand() rng.Source       { return p.e.rand }
func (p aiPlayer) Act(cmd actions.Command) {
	p.actions.Execute(cmd)
}

// DelegateTurnsToAIPlayer lets the named intellect play and advance up to
// turns turns, stopping early once the game is won or lost. It returns the
// number of turns advanced.
func (e *Engine) DelegateTurnsToAIPlayer(name string, turns int) (int, error) {
	ai, err := intellect.New(name, e.rules, e.log)
	if err != nil {
		return 0, err
	}
	p := aiPlayer{e: e, actions: e.PlayerActions(true)}
	played := 0
	for played < turns && !e.IsGameOver() && !e.IsGameWon() {
		ai.PlayTurn(p)
		p.actions.AdvanceTurn()
		played++
	}
	e.log.Info("delegation finished",
		"intellect", name,
		"turns", played,
		"turn", e.gs.Turn,
		"won", e.IsGameWon(),
		"lost", e.IsGameOver(),
	)
	return played, nil
}
