package ruleset

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
)

// InitialState builds turn 1 of a new game. Faction timers are rolled from
// src.
func (r *Rules) InitialState(src rng.Source) (*model.GameState, model.AIState) {
	in := r.T.Initial
	gs := &model.GameState{
		Turn:                    1,
		Money:                   in.Money,
		Funding:                 in.Funding,
		Intel:                   in.Intel,
		AgentCap:                in.AgentCap,
		TransportCap:            in.TransportCap,
		TrainingCap:             in.TrainingCap,
		Agents:                  []model.Agent{},
		Factions:                []model.Faction{},
		Missions:                []model.Mission{},
		LeadInvestigations:      map[string]*model.LeadInvestigation{},
		LeadInvestigationCounts: map[string]int{},
	}
	for i := 0; i < in.Agents; i++ {
		gs.Agents = append(gs.Agents, r.NewAgent(gs))
	}
	for _, fd := range r.C.Factions.Defs {
		gs.Factions = append(gs.Factions, model.Faction{
			ID:                      fd.ID,
			FactionDataID:           fd.ID,
			ActivityLevel:           fd.InitialActivityLevel,
			TargetTurnsForLevelUp:   r.RollProgressionTurns(fd.InitialActivityLevel, src),
			TurnsUntilNextOperation: r.RollOperationFrequency(fd.InitialActivityLevel, src),
		})
	}
	ai := model.AIState{DesiredAgentCount: r.T.AI.InitialDesiredAgentCount}
	return gs, ai
}

// NewAgent creates an agent ready for duty on the current turn. It is not
// appended to gs.
func (r *Rules) NewAgent(gs *model.GameState) model.Agent {
	in := r.T.Initial
	return model.Agent{
		ID:           gs.NewAgentID(),
		State:        model.Available,
		Assignment:   model.Assignment{Kind: model.Standby},
		Skill:        in.AgentSkill,
		HitPoints:    in.AgentMaxHitPoints,
		MaxHitPoints: in.AgentMaxHitPoints,
		TurnHired:    gs.Turn,
	}
}
