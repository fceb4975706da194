package game

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
)

// ActionResult is what every player action returns.
type ActionResult struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	Code         string `json:"code,omitempty"`
}

func fromResult(r actions.Result) ActionResult {
	return ActionResult{Success: r.OK, ErrorMessage: r.Message, Code: r.Code}
}

// PlayerActions is the action surface. In strict mode a rejected action
// panics; the AI uses it so that a bad decision surfaces immediately.
type PlayerActions struct {
	e      *Engine
	strict bool
}

func (e *Engine) PlayerActions(strict bool) *PlayerActions {
	return &PlayerActions{e: e, strict: strict}
}

// Execute runs any command through the same path as the typed methods.
func (p *PlayerActions) Execute(cmd actions.Command) ActionResult {
	res := p.e.apply(cmd)
	if !res.OK && p.strict {
		invariant.Fail("%s rejected: %s %s", cmd.Kind(), res.Code, res.Message)
	}
	return fromResult(res)
}

func (p *PlayerActions) HireAgent() ActionResult {
	return p.Execute(actions.HireAgent{})
}

func (p *PlayerActions) SackAgents(ids ...string) ActionResult {
	return p.Execute(actions.SackAgents{AgentIDs: ids})
}

func (p *PlayerActions) AssignAgentsToContracting(ids ...string) ActionResult {
	return p.Execute(actions.AssignAgentsToContracting{AgentIDs: ids})
}

func (p *PlayerActions) AssignAgentsToEspionage(ids ...string) ActionResult {
	return p.Execute(actions.AssignAgentsToEspionage{AgentIDs: ids})
}

func (p *PlayerActions) AssignAgentsToTraining(ids ...string) ActionResult {
	return p.Execute(actions.AssignAgentsToTraining{AgentIDs: ids})
}

func (p *PlayerActions) RecallAgents(ids ...string) ActionResult {
	return p.Execute(actions.RecallAgents{AgentIDs: ids})
}

func (p *PlayerActions) StartLeadInvestigation(leadID string, ids ...string) ActionResult {
	return p.Execute(actions.StartLeadInvestigation{LeadID: leadID, AgentIDs: ids})
}

func (p *PlayerActions) AddAgentsToInvestigation(investigationID string, ids ...string) ActionResult {
	return p.Execute(actions.AddAgentsToInvestigation{InvestigationID: investigationID, AgentIDs: ids})
}

func (p *PlayerActions) DeployAgentsToMission(missionID string, ids ...string) ActionResult {
	return p.Execute(actions.DeployAgentsToMission{MissionID: missionID, AgentIDs: ids})
}

func (p *PlayerActions) BuyUpgrade(u model.Upgrade) ActionResult {
	return p.Execute(actions.BuyUpgrade{Upgrade: u})
}

func (p *PlayerActions) AdvanceTurn() ActionResult {
	return p.Execute(actions.AdvanceTurn{})
}

// RaiseDesiredAgentCount and RaiseDesiredUpgrade move AI goals. They replace
// the present checkpoint instead of adding one.
func (e *Engine) RaiseDesiredAgentCount() ActionResult {
	return fromResult(e.apply(actions.RaiseDesiredAgentCount{}))
}

func (e *Engine) RaiseDesiredUpgrade(u model.Upgrade) ActionResult {
	return fromResult(e.apply(actions.RaiseDesiredUpgrade{Upgrade: u}))
}

// PlayTurnAPI is what a player, human or AI, needs for one turn.
type PlayTurnAPI interface {
	GameState() *model.GameState
	AIState() model.AIState
	PlayerActions(strict bool) *PlayerActions
	RaiseDesiredAgentCount() ActionResult
	RaiseDesiredUpgrade(u model.Upgrade) ActionResult
}

var _ PlayTurnAPI = (*Engine)(nil)
